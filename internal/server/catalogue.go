package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nashtech/odmat/internal/questions"
)

type catalogue struct {
	bank *questions.Bank
}

type themeView struct {
	questions.Theme
	Questions int `json:"questions"`
}

func (h catalogue) themes(c echo.Context) error {
	var out []themeView
	for _, t := range h.bank.Themes() {
		out = append(out, themeView{Theme: t, Questions: len(h.bank.ByTheme(t.ID))})
	}
	return c.JSON(http.StatusOK, out)
}

// list returns every question, or those of ?theme=.
func (h catalogue) list(c echo.Context) error {
	if theme := c.QueryParam("theme"); theme != "" {
		if _, ok := h.bank.Theme(theme); !ok {
			return echo.NewHTTPError(http.StatusNotFound, "unknown theme "+theme)
		}
		return c.JSON(http.StatusOK, h.bank.ByTheme(theme))
	}
	return c.JSON(http.StatusOK, h.bank.Questions())
}

func (h catalogue) get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "question id must be a number")
	}
	q, err := h.bank.Question(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}
