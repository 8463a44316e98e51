package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/core/claims"
	"github.com/rahmadiyan/health-store/core/product"
	"github.com/rahmadiyan/health-store/database"
	"github.com/rahmadiyan/health-store/validate"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		items, err := FetchItems(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching wishlist items: %w", err)
		}

		entries := make([]Entry, 0, len(items))
		for _, it := range items {
			prd, err := product.Fetch(ctx, db, it.ProductID)
			if err != nil {
				return fmt.Errorf("fetching product[%s]: %w", it.ProductID, err)
			}
			entries = append(entries, Entry{Product: prd, AddedAt: it.AddedAt})
		}

		return web.Respond(ctx, w, entries, http.StatusOK)
	}
}

func HandleCreateItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding wishlist item: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		prd, err := product.Fetch(ctx, db, in.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", in.ProductID, err)
		}

		it := Item{
			UserID:    clm.UserID,
			ProductID: prd.ID,
			AddedAt:   time.Now().UTC(),
		}

		if err := CreateItem(ctx, db, it); err != nil {
			if database.IsUniqueViolation(err) {
				err := errors.New("product already in wishlist")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return fmt.Errorf("creating wishlist item: %w", err)
		}

		return web.Respond(ctx, w, Entry{Product: prd, AddedAt: it.AddedAt}, http.StatusCreated)
	}
}

func HandleCheckItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		resp := struct {
			InWishlist bool `json:"inWishlist"`
		}{}

		_, err = FetchItem(ctx, db, clm.UserID, productID)
		switch {
		case err == nil:
			resp.InWishlist = true
		case errors.Is(err, sql.ErrNoRows):
			// Not saved.
		default:
			return fmt.Errorf("checking wishlist item: %w", err)
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		deleted, err := DeleteItem(ctx, db, clm.UserID, productID)
		if err != nil {
			return fmt.Errorf("deleting wishlist item: %w", err)
		}
		if !deleted {
			return weberr.NotFound(errors.New("product not in wishlist"))
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Delete(ctx, db, clm.UserID); err != nil {
			return fmt.Errorf("clearing wishlist: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
