package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/core/claims"
	"github.com/rahmadiyan/health-store/core/user"
	"github.com/rahmadiyan/health-store/core/vendor"
	"github.com/rahmadiyan/health-store/database"
	"github.com/rahmadiyan/health-store/validate"
	"golang.org/x/crypto/bcrypt"
)

type SignupNew struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone"`
}

type SignupVendorNew struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8,max=72"`
	Phone           string   `json:"phone"`
	StoreName       string   `json:"storeName" validate:"required"`
	BusinessAddress string   `json:"businessAddress" validate:"required"`
	Description     string   `json:"description"`
	Documents       []string `json:"documents" validate:"omitempty,dive,url"`
}

type LoginNew struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the authenticated identity returned by signup and login,
// enriched with the vendor profile when one exists.
type Session struct {
	User   user.User      `json:"user"`
	Vendor *vendor.Vendor `json:"vendor,omitempty"`
}

func newUser(name, email, phone, password string) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	return user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         claims.RoleBuyer,
		Phone:        phone,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func HandleSignup(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var sn SignupNew
		if err := web.Decode(w, r, &sn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup: %w", err))
		}

		if err := validate.Check(sn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := user.FetchByEmail(ctx, db, sn.Email); err == nil {
			err := errors.New("email already registered")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking email: %w", err)
		}

		usr, err := newUser(sn.Name, sn.Email, sn.Phone, sn.Password)
		if err != nil {
			return err
		}

		if err := user.Create(ctx, db, usr); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		if err := login(ctx, session, usr.ID, usr.Role); err != nil {
			return fmt.Errorf("issuing session: %w", err)
		}

		return web.Respond(ctx, w, Session{User: usr}, http.StatusCreated)
	}
}

// HandleSignupVendor creates the user account and its pending store
// application together. The account keeps the buyer role until an admin
// approves the store.
func HandleSignupVendor(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var sn SignupVendorNew
		if err := web.Decode(w, r, &sn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding vendor signup: %w", err))
		}

		if err := validate.Check(sn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := user.FetchByEmail(ctx, db, sn.Email); err == nil {
			err := errors.New("email already registered")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking email: %w", err)
		}

		usr, err := newUser(sn.Name, sn.Email, sn.Phone, sn.Password)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		vnd := vendor.Vendor{
			ID:              validate.GenerateID(),
			UserID:          usr.ID,
			StoreName:       sn.StoreName,
			BusinessAddress: sn.BusinessAddress,
			Description:     sn.Description,
			Documents:       sn.Documents,
			IsApproved:      false,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.Create(ctx, tx, usr); err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			if err := vendor.Create(ctx, tx, vnd); err != nil {
				return fmt.Errorf("creating vendor application: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("registering vendor: %w", err)
		}

		if err := login(ctx, session, usr.ID, usr.Role); err != nil {
			return fmt.Errorf("issuing session: %w", err)
		}

		return web.Respond(ctx, w, Session{User: usr, Vendor: &vnd}, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ln LoginNew
		if err := web.Decode(w, r, &ln); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login: %w", err))
		}

		if err := validate.Check(ln); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := user.FetchByEmail(ctx, db, ln.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotAuthorized(errors.New("wrong credentials"))
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(ln.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("wrong credentials"))
		}

		resp := Session{User: usr}

		vnd, err := vendor.FetchByUser(ctx, db, usr.ID)
		switch {
		case err == nil:
			resp.Vendor = &vnd

			// An approved store whose owner still carries the buyer
			// role gets promoted at login.
			if vnd.IsApproved && usr.Role != claims.RoleVendor {
				if err := user.UpdateRole(ctx, db, usr.ID, claims.RoleVendor); err != nil {
					return fmt.Errorf("promoting user role: %w", err)
				}
				resp.User.Role = claims.RoleVendor
			}
		case errors.Is(err, sql.ErrNoRows):
			// No store profile, plain buyer.
		default:
			return fmt.Errorf("fetching vendor of user[%s]: %w", usr.ID, err)
		}

		if err := login(ctx, session, usr.ID, resp.User.Role); err != nil {
			return fmt.Errorf("issuing session: %w", err)
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
