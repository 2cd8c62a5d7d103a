// Package export renders test definitions to JSON artifacts and stores
// them through a blob store.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kdrivas1989/judgetest/internal/quiz"
)

// MarshalTest renders a test for export. Without answers the correct
// choice and expected section are stripped, same as student reads.
func MarshalTest(t quiz.Test, includeAnswers bool) ([]byte, error) {
	if !includeAnswers {
		t = t.Sanitized()
	}
	return json.MarshalIndent(t, "", "  ")
}

// WriteTest stores the rendered test under exports/<id>.json (or
// exports/<id>_key.json with answers) and returns the artifact URL.
func WriteTest(bs BlobStore, t quiz.Test, includeAnswers bool) (string, error) {
	data, err := MarshalTest(t, includeAnswers)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/%s.json", t.ID)
	if includeAnswers {
		key = fmt.Sprintf("exports/%s_key.json", t.ID)
	}
	if _, err := bs.Put(key, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return bs.SignedURL(key)
}
