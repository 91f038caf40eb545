// Package httpapi exposes the workflow, purchase, portfolio and photo
// operations as a JSON HTTP API.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dimfeld/httptreemux"
	"github.com/unrolled/render"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/internal/invest"
	"github.com/brickvest/brickvest/internal/photos"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/models"
)

// Server holds the services behind the HTTP surface.
type Server struct {
	engine   *property.Engine
	invest   *invest.Service
	photos   *photos.Service
	verifier *auth.Verifier
	render   *render.Render
	log      *zap.Logger
}

// NewServer wires the services into an HTTP server.
func NewServer(engine *property.Engine, investSvc *invest.Service, photoSvc *photos.Service, verifier *auth.Verifier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine:   engine,
		invest:   investSvc,
		photos:   photoSvc,
		verifier: verifier,
		render:   render.New(),
		log:      log,
	}
}

// Router builds the route table.
func (s *Server) Router() *httptreemux.TreeMux {
	router := httptreemux.New()
	router.GET("/_hc", s.health)
	router.POST("/properties/steps", s.applyStep)
	router.PUT("/properties/steps", s.applyStep)
	router.GET("/properties/:id", s.getProperty)
	router.PATCH("/properties/:id", s.patchProperty)
	router.DELETE("/properties/:id", s.deleteProperty)
	router.PUT("/properties/:id/status", s.setStatus)
	router.PUT("/properties/:id/photos", s.replacePhotos)
	router.POST("/investments/buy", s.buyShares)
	router.GET("/portfolio", s.getPortfolio)
	return router
}

// identify verifies the request's bearer token.
func (s *Server) identify(r *http.Request) (auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Identity{}, errNoAuth
	}
	return s.verifier.VerifyHeader(header)
}

func decodeBody(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errs.Validationf("malformed request body: %v", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.render.JSON(w, http.StatusOK, map[string]interface{}{})
}

func (s *Server) applyStep(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var sub property.Submission
	if err := decodeBody(r, &sub); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.engine.ApplyStep(r.Context(), caller, sub)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.render.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"propertyId":    result.PropertyID,
			"step":          result.Step,
			"status":        result.Status,
			"isNewProperty": result.IsNewProperty,
			"property":      result.Property,
		},
	})
}

func (s *Server) getProperty(w http.ResponseWriter, r *http.Request, params map[string]string) {
	p, err := s.engine.Get(r.Context(), params["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": p})
}

func (s *Server) patchProperty(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var fields map[string]interface{}
	if err := decodeBody(r, &fields); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.engine.PatchFields(r.Context(), caller, params["id"], fields)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": p})
}

func (s *Server) deleteProperty(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.engine.Remove(r.Context(), caller, params["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": p})
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body struct {
		Status models.PropertyStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.engine.SetStatus(r.Context(), caller, params["id"], body.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": p})
}

func (s *Server) replacePhotos(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body struct {
		Keep    []string        `json:"keep"`
		Delete  []string        `json:"delete"`
		Uploads []photos.Upload `json:"uploads"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	final, results, err := s.photos.Replace(r.Context(), caller, params["id"], body.Keep, body.Delete, body.Uploads)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.render.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"photos":  final,
			"results": results,
		},
	})
}

func (s *Server) buyShares(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req invest.PurchaseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.UserID == "" {
		req.UserID = caller.UserID
	}
	if req.UserID != caller.UserID && !caller.IsAdmin() {
		s.writeError(w, errs.Forbiddenf("cannot purchase on behalf of another user"))
		return
	}

	result, err := s.invest.BuyShares(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": result})
}

func (s *Server) getPortfolio(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, err := s.identify(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && !caller.IsAdmin() {
		s.writeError(w, errs.Forbiddenf("cannot read another user's portfolio"))
		return
	}

	opts := &invest.PortfolioOptions{}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.TransactionLimit = int32(n)
		}
	}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			s.writeError(w, errs.Validationf("malformed cursor"))
			return
		}
		opts.Cursor = decoded
	}

	portfolio, err := s.invest.GetPortfolio(r.Context(), userID, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The cursor travels as an opaque token.
	var next string
	if len(portfolio.NextCursor) > 0 {
		next = encodeCursor(portfolio.NextCursor)
		portfolio.NextCursor = nil
	}
	s.render.JSON(w, http.StatusOK, map[string]interface{}{
		"totalInvested": portfolio.TotalInvested,
		"totalValue":    portfolio.TotalValue,
		"totalReturn":   portfolio.TotalReturn,
		"properties":    portfolio.Properties,
		"transactions":  portfolio.Transactions,
		"stats":         portfolio.Stats,
		"nextCursor":    next,
	})
}

func encodeCursor(cursor map[string]string) string {
	raw, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(raw)
}

func decodeCursor(token string) (map[string]string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	cursor := make(map[string]string)
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, err
	}
	return cursor, nil
}
