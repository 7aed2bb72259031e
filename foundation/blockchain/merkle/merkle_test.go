package merkle_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ebchain/blockchain/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func leaves(n int) [][]byte {
	l := make([][]byte, n)
	for i := range l {
		l[i] = []byte(fmt.Sprintf("tx-%d", i))
	}
	return l
}

func Test_Proof(t *testing.T) {
	type table struct {
		name   string
		leaves int
	}

	tt := []table{
		{name: "single", leaves: 1},
		{name: "even", leaves: 4},
		{name: "odd", leaves: 5},
		{name: "large", leaves: 17},
	}

	t.Log("Given the need to prove a leaf is part of a tree.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the tree has %d leaves.", testID, tst.leaves)
				{
					data := leaves(tst.leaves)

					tree, err := merkle.NewTree(data)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to build the tree: %s", failed, testID, err)
					}

					for _, leaf := range data {
						proof, err := tree.Proof(leaf)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to prove %s: %s", failed, testID, leaf, err)
						}
						if err := merkle.Verify(leaf, proof, tree.Root()); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould verify %s: %s", failed, testID, leaf, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould prove every leaf.", success, testID)

					proof, _ := tree.Proof(data[0])
					if err := merkle.Verify([]byte("forged"), proof, tree.Root()); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould not verify a forged leaf.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not verify a forged leaf.", success, testID)

					if _, err := tree.Proof([]byte("missing")); !errors.Is(err, merkle.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould not prove a missing leaf, got %v.", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould not prove a missing leaf.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}

	t.Log("Given a tree with no leaves.")
	{
		if _, err := merkle.NewTree(nil); err == nil {
			t.Fatalf("\t%s\tShould not build the tree.", failed)
		}
		t.Logf("\t%s\tShould not build the tree.", success)
	}
}
