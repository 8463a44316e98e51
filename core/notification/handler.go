package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/core/claims"
	"github.com/rahmadiyan/health-store/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		notifications, err := ListByUser(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("listing notifications of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, notifications, http.StatusOK)
	}
}

// HandleMarkRead hides foreign notifications behind a 404 rather than
// revealing their existence.
func HandleMarkRead(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ntf, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching notification[%s]: %w", id, err)
		}

		if ntf.UserID != clm.UserID {
			return weberr.NotFound(errors.New("notification belongs to another user"))
		}

		if err := MarkRead(ctx, db, id); err != nil {
			return fmt.Errorf("marking notification[%s] read: %w", id, err)
		}

		ntf.Read = true
		return web.Respond(ctx, w, ntf, http.StatusOK)
	}
}
