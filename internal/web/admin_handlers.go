package web

import (
	"math"
	"net/http"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
	"github.com/evcraddock/fsbo/internal/validation"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalProperties   int64   `json:"totalProperties"`
	PremiumProperties int64   `json:"premiumProperties"`
	PremiumPercentage float64 `json:"premiumPercentage"`
	TotalUsers        int64   `json:"totalUsers"`
	SellerUsers       int64   `json:"sellerUsers"`
	BuyerUsers        int64   `json:"buyerUsers"`
	AdminUsers        int64   `json:"adminUsers"`
	TotalRevenue      int64   `json:"totalRevenue"`
	TransactionsCount int64   `json:"transactionsCount"`
	OffersCount       int64   `json:"offersCount"`
	MessagesCount     int64   `json:"messagesCount"`
}

// handleAdminProperties lists every listing, optionally filtered by ?status=.
func (s *Server) handleAdminProperties(w http.ResponseWriter, r *http.Request) {
	var status property.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := property.ParseStatus(raw)
		if err != nil {
			apiFail(w, r, apperr.Validation("%v", err))
			return
		}
		status = st
	}
	props, err := s.props.Repository().ListAll(r.Context(), status)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, props, http.StatusOK)
}

func (s *Server) handleAdminPropertyStatus(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	var req struct {
		Status property.Status `json:"status" validate:"required"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		apiFail(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		apiFail(w, r, err)
		return
	}
	p, err := s.props.SetStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) handleAdminPropertyPremium(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	var req struct {
		IsPremium *bool `json:"isPremium" validate:"required"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		apiFail(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		apiFail(w, r, err)
		return
	}
	p, err := s.props.SetPremium(r.Context(), actor, id, *req.IsPremium)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, users, http.StatusOK)
}

// handleAdminUserRole assigns any role, including admin.
func (s *Server) handleAdminUserRole(w http.ResponseWriter, r *http.Request, _ identity.Actor) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiFail(w, r, err)
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		apiFail(w, r, apperr.Validation("%v", err))
		return
	}
	id := muxVar(r, "id")
	u, err := s.users.SetRole(r.Context(), id, role)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	s.auth.Forget(id)
	apiJSON(w, u, http.StatusOK)
}

func (s *Server) handleAdminTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.premium.ListAll(r.Context())
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, txns, http.StatusOK)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats(r)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, stats, http.StatusOK)
}

func (s *Server) stats(r *http.Request) (*Stats, error) {
	ctx := r.Context()
	var st Stats
	var err error

	if st.TotalProperties, st.PremiumProperties, err = s.props.Repository().Counts(ctx); err != nil {
		return nil, err
	}
	if st.TotalProperties > 0 {
		pct := float64(st.PremiumProperties) / float64(st.TotalProperties) * 100
		st.PremiumPercentage = math.Round(pct*10) / 10
	}

	roles, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	st.TotalUsers, st.BuyerUsers, st.SellerUsers, st.AdminUsers = roles.Total, roles.Buyers, roles.Sellers, roles.Admins

	if st.TransactionsCount, st.TotalRevenue, err = s.premium.Totals(ctx); err != nil {
		return nil, err
	}
	if st.OffersCount, err = s.offers.Count(ctx); err != nil {
		return nil, err
	}
	if st.MessagesCount, err = s.messages.Count(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}
