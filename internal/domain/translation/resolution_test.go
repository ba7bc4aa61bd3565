package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ptv/internal/core/id"
)

type keyed struct {
	id  id.ID
	key string
}

func TestResolveByKey(t *testing.T) {
	a := keyed{id: id.New(), key: "a"}
	b := keyed{id: id.New(), key: "b"}
	idOf := func(k keyed) id.ID { return k.id }

	tests := []struct {
		name       string
		key        string
		candidates []keyed
		wantNew    bool
		wantID     id.ID
	}{
		{name: "match", key: "b", candidates: []keyed{a, b}, wantID: b.id},
		{name: "no match", key: "c", candidates: []keyed{a, b}, wantNew: true},
		{name: "no candidates", key: "a", wantNew: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, found := ResolveByKey(tt.candidates, func(k keyed) bool { return k.key == tt.key }, idOf)

			assert.Equal(t, tt.wantNew, IsNew(res))
			if tt.wantNew {
				assert.False(t, id.IsNil(res.EntityID()))
				assert.Nil(t, res.OwnerID())
				assert.Equal(t, keyed{}, found)
				return
			}
			assert.Equal(t, tt.wantID, res.EntityID())
			assert.Equal(t, tt.wantID, *res.OwnerID())
			assert.Equal(t, tt.key, found.key)
		})
	}
}

func TestResolution_Switch(t *testing.T) {
	var res Resolution = Existing{ID: id.New()}

	switch r := res.(type) {
	case Created:
		t.Fatalf("unexpected created %v", r.ID)
	case Existing:
		assert.Equal(t, res.EntityID(), r.ID)
	}
}
