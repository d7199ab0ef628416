package output

import (
	"encoding/json"
	"io"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

// WriteJSON writes the result in the same shape the HTTP API returns
func WriteJSON(w io.Writer, res *routing.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
