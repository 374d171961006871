package blob_test

import (
	"testing"

	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/rtest"
)

func TestUsedSetSaturates(t *testing.T) {
	s := blob.NewUsedSet()
	id := ids.Hash([]byte("x"))
	s.Insert(id)

	for i := 0; i < 1000; i++ {
		s.IncrementSaturating(id)
	}

	count, ok := s.Count(id)
	rtest.Assert(t, ok, "id should still be present")
	rtest.Equals(t, uint8(255), count)
}

func TestUsedSetIncrementUnknownIsNoop(t *testing.T) {
	s := blob.NewUsedSet()
	id := ids.Hash([]byte("never inserted"))

	ok := s.IncrementSaturating(id)
	rtest.Assert(t, !ok, "incrementing an id never inserted must report false")
	rtest.Assert(t, !s.Has(id), "unknown id must not become a member as a side effect")
}

func TestUsedSetMissingIDs(t *testing.T) {
	s := blob.NewUsedSet()
	seen := ids.Hash([]byte("seen"))
	missing := ids.Hash([]byte("missing"))
	s.Insert(seen)
	s.Insert(missing)

	s.IncrementSaturating(seen)

	got := s.MissingIDs()
	rtest.Equals(t, 1, len(got))
	rtest.Assert(t, got[0].Equal(missing), "expected the uncounted id to be reported missing")
}

func TestUsedSetConsumeOnce(t *testing.T) {
	s := blob.NewUsedSet()
	id := ids.Hash([]byte("claimed"))
	s.Insert(id)

	rtest.Assert(t, s.Consume(id), "first consume should find the entry")
	rtest.Assert(t, !s.Consume(id), "second consume of the same id must report false")
}

func TestUsedSetSetCountAndDelete(t *testing.T) {
	s := blob.NewUsedSet()
	id := ids.Hash([]byte("dup"))
	s.Insert(id)
	s.SetCount(id, 3)

	count, ok := s.Count(id)
	rtest.Assert(t, ok, "id should be present")
	rtest.Equals(t, uint8(3), count)

	s.Delete(id)
	rtest.Assert(t, !s.Has(id), "delete should remove the id entirely")
}
