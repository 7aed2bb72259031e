package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

const baseURL = "http://%s/v1"

// NetSyncChain asks the node at the host for its chain and replaces the local
// chain with it when it is longer and valid.
func (s *State) NetSyncChain(ctx context.Context, host string) error {
	s.evHandler("state: NetSyncChain: started: host[%s]", host)
	defer s.evHandler("state: NetSyncChain: completed: host[%s]", host)

	url := fmt.Sprintf("%s/blockchain", fmt.Sprintf(baseURL, host))

	var blocks []database.Block
	if err := send(ctx, http.MethodGet, url, nil, &blocks); err != nil {
		return err
	}

	s.evHandler("state: NetSyncChain: host[%s]: found blocks[%d]", host, len(blocks))

	return s.ReplaceChain(blocks)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
