package document_test

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/example/studygroup/internal/testfixtures"
)

// The serialized layout is the storage contract consumed by the UI layer;
// pin it with a golden file so accidental field renames show up in review.
func TestDocumentSerializedLayout(t *testing.T) {
	t.Parallel()

	doc := testfixtures.SeededDocument()

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "seeded_document", payload)
}
