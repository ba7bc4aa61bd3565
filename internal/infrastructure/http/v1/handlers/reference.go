package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/internal/domain/country"
	"ptv/internal/domain/finto"
	"ptv/internal/domain/types"
)

// Classifications is the finto service as seen by the HTTP layer.
type Classifications interface {
	ImportOntology(ctx context.Context, items []finto.VmJsonFintoItem) (finto.ImportResult, error)
	ImportTree(ctx context.Context, kind finto.TreeKind, items []finto.VmJsonFintoItem) (finto.ImportResult, error)
	GetTree(ctx context.Context, kind finto.TreeKind) ([]*finto.TreeItem, error)
	GetOntologyTerm(ctx context.Context, termID id.ID) (*finto.OntologyTerm, error)
	SearchOntology(ctx context.Context, query string, limit int) ([]*finto.OntologyTerm, error)
}

// Countries is the country service as seen by the HTTP layer.
type Countries interface {
	Import(ctx context.Context, items []country.VmJsonCountry) (country.ImportResult, error)
	List(ctx context.Context) ([]*country.Country, error)
}

// ReferenceHandler serves classifications, countries and type lists, and
// accepts their imports.
type ReferenceHandler struct {
	*BaseHandler
	finto     Classifications
	countries Countries
	types     types.Cache
}

// NewReferenceHandler creates a new reference data handler.
func NewReferenceHandler(base *BaseHandler, finto Classifications, countries Countries, cache types.Cache) *ReferenceHandler {
	return &ReferenceHandler{
		BaseHandler: base,
		finto:       finto,
		countries:   countries,
		types:       cache,
	}
}

// Types handles GET /types/:kind.
func (h *ReferenceHandler) Types(c *gin.Context) {
	kind := types.Kind(c.Param("kind"))
	rows := h.types.Types(kind)
	if len(rows) == 0 {
		h.Error(c, apperror.NewNotFound("type kind", string(kind)))
		return
	}
	h.OK(c, rows)
}

// Tree handles GET /classifications/:kind.
func (h *ReferenceHandler) Tree(c *gin.Context) {
	roots, err := h.finto.GetTree(c.Request.Context(), finto.TreeKind(c.Param("kind")))
	if err != nil {
		h.Error(c, err)
		return
	}
	if roots == nil {
		roots = []*finto.TreeItem{}
	}
	h.OK(c, roots)
}

// OntologyTerm handles GET /ontology/:id.
func (h *ReferenceHandler) OntologyTerm(c *gin.Context) {
	termID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	term, err := h.finto.GetOntologyTerm(c.Request.Context(), termID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, term)
}

// SearchOntology handles GET /ontology?search=...&limit=...
func (h *ReferenceHandler) SearchOntology(c *gin.Context) {
	terms, err := h.finto.SearchOntology(c.Request.Context(), c.Query("search"), h.ParseIntQuery(c, "limit", 20))
	if err != nil {
		h.Error(c, err)
		return
	}
	if terms == nil {
		terms = []*finto.OntologyTerm{}
	}
	h.OK(c, terms)
}

// Countries handles GET /countries.
func (h *ReferenceHandler) Countries(c *gin.Context) {
	list, err := h.countries.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	if list == nil {
		list = []*country.Country{}
	}
	h.OK(c, list)
}

// ImportOntology handles POST /imports/ontology.
func (h *ReferenceHandler) ImportOntology(c *gin.Context) {
	var items []finto.VmJsonFintoItem
	if !h.BindImport(c, &items) {
		return
	}
	result, err := h.finto.ImportOntology(c.Request.Context(), items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ImportTree handles POST /imports/classifications/:kind.
func (h *ReferenceHandler) ImportTree(c *gin.Context) {
	kind := finto.TreeKind(c.Param("kind"))
	if !kind.Valid() {
		h.Error(c, apperror.NewValidation("unknown classification").WithDetail("kind", string(kind)))
		return
	}
	var items []finto.VmJsonFintoItem
	if !h.BindImport(c, &items) {
		return
	}
	result, err := h.finto.ImportTree(c.Request.Context(), kind, items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ImportCountries handles POST /imports/countries.
func (h *ReferenceHandler) ImportCountries(c *gin.Context) {
	var items []country.VmJsonCountry
	if !h.BindImport(c, &items) {
		return
	}
	result, err := h.countries.Import(c.Request.Context(), items)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
