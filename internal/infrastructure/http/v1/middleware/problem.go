package middleware

import (
	"encoding/json"
	"net/http"

	"ptv/internal/infrastructure/http/v1/dto"
)

// problemRender writes an RFC 7807 body without gin overriding the content type.
type problemRender struct {
	body dto.ProblemDetails
}

func (r problemRender) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	return json.NewEncoder(w).Encode(r.body)
}

func (r problemRender) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", problemContentType)
}
