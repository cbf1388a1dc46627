package rest

import (
	"net/http"

	"github.com/charstorm/toposphere/internal/server/models"
	"github.com/charstorm/toposphere/internal/server/services"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type profileUpdateRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	*models.User
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *RESTServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, pair, err := s.users.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *RESTServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *RESTServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *RESTServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Profile(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *RESTServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	s.updateProfile(w, r, false)
}

func (s *RESTServer) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	s.updateProfile(w, r, true)
}

func (s *RESTServer) updateProfile(w http.ResponseWriter, r *http.Request, partial bool) {
	var req profileUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.users.UpdateProfile(r.Context(), userIDFromContext(r.Context()), services.ProfileUpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, partial)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *RESTServer) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.users.ChangePassword(r.Context(), userIDFromContext(r.Context()), services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "password updated successfully")
}

func (s *RESTServer) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.users.DeleteAccount(r.Context(), userIDFromContext(r.Context()), req.Password); err != nil {
		s.renderError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "account deleted successfully")
}
