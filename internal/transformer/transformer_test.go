package transformer

import (
	"reflect"
	"testing"

	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

type setField struct {
	key string
	val any
}

func (t setField) Apply(in []records.Record) []records.Record {
	for i := range in {
		in[i][t.key] = t.val
	}
	return in
}

func TestChain_AppliesInOrder(t *testing.T) {
	t.Parallel()

	c := Chain{
		setField{"type", "cow"},
		setField{"type", "Cattle"},
		Func(func(in []records.Record) []records.Record { return in[:1] }),
	}
	got := c.Apply([]records.Record{{"tag": "A1"}, {"tag": "A2"}})
	want := []records.Record{{"tag": "A1", "type": "Cattle"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Apply = %#v, want %#v", got, want)
	}
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"tag": "A1"}}
	if got := (Chain{}).Apply(in); !reflect.DeepEqual(got, in) {
		t.Fatalf("empty chain changed input: %#v", got)
	}
}
