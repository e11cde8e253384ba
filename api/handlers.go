package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"cardwall-api/domain"
	"cardwall-api/storage"
)

const cardBodyMaxSize = 64 * 1024 // 64 KiB

// RateRules holds the per-route-class limiter configuration.
type RateRules struct {
	Health     Rule
	CardsRead  Rule
	CardsWrite Rule
}

// Register wires up all API routes on the provided Echo instance and
// installs the envelope error handler.
func Register(e *echo.Echo, store CardStore, auth Authenticator, limiter *Limiter, rules RateRules, trustProxy bool, logger *log.Logger) {
	e.HTTPErrorHandler = ProblemHandler(logger)

	health := rateLimitMiddleware(limiter, rules.Health, auth, false, trustProxy, logger)
	read := rateLimitMiddleware(limiter, rules.CardsRead, auth, true, trustProxy, logger)
	write := rateLimitMiddleware(limiter, rules.CardsWrite, auth, true, trustProxy, logger)

	e.GET("/health", getHealth(), health)
	e.POST("/cards", createCard(store, auth), write)
	e.GET("/cards", listCards(store, auth), read)
	e.GET("/cards/:id", getCard(store, auth), read)
	e.PATCH("/cards/:id", updateCard(store, auth), write)
	e.DELETE("/cards/:id", deleteCard(store, auth), write)
}

type healthResponse struct {
	Status string `json:"status"`
}

func getHealth() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}

// cardRequest is the mutation payload for both create and patch. Create
// requires both fields; patch merges only the ones supplied.
type cardRequest struct {
	Title  *string `json:"title"`
	Column *string `json:"column"`
}

// decodeCardRequest reads a bounded JSON body. Malformed JSON, unknown
// fields and oversized bodies all take the validation path.
func decodeCardRequest(c echo.Context) (cardRequest, error) {
	lr := io.LimitReader(c.Request().Body, cardBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()

	var req cardRequest
	if err := dec.Decode(&req); err != nil {
		return cardRequest{}, errValidation()
	}
	return req, nil
}

func cardID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errValidation()
	}
	return id, nil
}

// storeError maps store failures onto the transport taxonomy. Existence
// is checked before ownership in the store, so a nonexistent id yields
// 404 even for a caller who would also fail the ownership check.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return errNotFound()
	case errors.Is(err, storage.ErrNotOwner):
		return errForbidden(action)
	}
	return err
}

func createCard(store CardStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromHeader(c.Request().Header)
		if err != nil {
			return err
		}
		req, err := decodeCardRequest(c)
		if err != nil {
			return err
		}
		if req.Title == nil || req.Column == nil {
			return errValidation()
		}
		title, err := domain.NewTitle(*req.Title)
		if err != nil {
			return errValidation()
		}
		column, err := domain.ParseColumn(*req.Column)
		if err != nil {
			return errValidation()
		}

		card, err := store.Create(c.Request().Context(), userID, title, column)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, card)
	}
}

func listCards(store CardStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromHeader(c.Request().Header)
		if err != nil {
			return err
		}
		cards, err := store.List(c.Request().Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, cards)
	}
}

func getCard(store CardStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromHeader(c.Request().Header)
		if err != nil {
			return err
		}
		id, err := cardID(c)
		if err != nil {
			return err
		}
		card, err := store.Get(c.Request().Context(), id, userID)
		if err != nil {
			return storeError(err, "view")
		}
		return c.JSON(http.StatusOK, card)
	}
}

func updateCard(store CardStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromHeader(c.Request().Header)
		if err != nil {
			return err
		}
		id, err := cardID(c)
		if err != nil {
			return err
		}
		req, err := decodeCardRequest(c)
		if err != nil {
			return err
		}

		var patch storage.Patch
		if req.Title != nil {
			title, err := domain.NewTitle(*req.Title)
			if err != nil {
				return errValidation()
			}
			patch.Title = &title
		}
		if req.Column != nil {
			column, err := domain.ParseColumn(*req.Column)
			if err != nil {
				return errValidation()
			}
			patch.Column = &column
		}

		card, err := store.Update(c.Request().Context(), id, userID, patch)
		if err != nil {
			return storeError(err, "update")
		}
		return c.JSON(http.StatusOK, card)
	}
}

func deleteCard(store CardStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromHeader(c.Request().Header)
		if err != nil {
			return err
		}
		id, err := cardID(c)
		if err != nil {
			return err
		}
		if err := store.Delete(c.Request().Context(), id, userID); err != nil {
			return storeError(err, "delete")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
