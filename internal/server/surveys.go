package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nashtech/odmat/internal/survey"
)

type surveys struct {
	svc *survey.Service
}

func surveyID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "survey id must be a number")
	}
	return id, nil
}

// ids resolves the caller and the :id survey.
func ids(c echo.Context) (owner, id int64, err error) {
	if owner, err = userID(c); err != nil {
		return 0, 0, err
	}
	id, err = surveyID(c)
	return owner, id, err
}

func (h surveys) create(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}
	var req survey.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	sv, err := h.svc.Create(c.Request().Context(), owner, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sv)
}

func (h surveys) list(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}
	list, err := h.svc.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h surveys) get(c echo.Context) error {
	owner, id, err := ids(c)
	if err != nil {
		return err
	}
	sv, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sv)
}

func (h surveys) update(c echo.Context) error {
	owner, id, err := ids(c)
	if err != nil {
		return err
	}
	var req survey.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	sv, err := h.svc.Update(c.Request().Context(), owner, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sv)
}

func (h surveys) delete(c echo.Context) error {
	owner, id, err := ids(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), owner, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Survey deleted successfully!"})
}

// edit runs fn against the survey's builder and responds with the element
// fn returns.
func (h surveys) edit(c echo.Context, fn func(b *survey.Builder) (survey.Element, error)) error {
	owner, id, err := ids(c)
	if err != nil {
		return err
	}
	var out survey.Element
	_, err = h.svc.Edit(c.Request().Context(), owner, id, func(b *survey.Builder) error {
		var err error
		out, err = fn(b)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

type addElementRequest struct {
	Type  string `json:"type"`
	Index *int   `json:"index"`
}

func (h surveys) addElement(c echo.Context) error {
	var req addElementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	t, err := survey.ParseElementType(req.Type)
	if err != nil {
		return err
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	return h.edit(c, func(b *survey.Builder) (survey.Element, error) {
		return b.Add(t, index)
	})
}

func (h surveys) updateElement(c echo.Context) error {
	var p survey.Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	eid := c.Param("eid")
	return h.edit(c, func(b *survey.Builder) (survey.Element, error) {
		return b.Update(eid, p)
	})
}

type moveRequest struct {
	Index int `json:"index"`
}

func (h surveys) moveElement(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	eid := c.Param("eid")
	return h.edit(c, func(b *survey.Builder) (survey.Element, error) {
		for i, e := range b.Elements() {
			if e.ID == eid {
				b.Move(i, req.Index)
				return e, nil
			}
		}
		return survey.Element{}, survey.ErrElementNotFound
	})
}

func (h surveys) removeElement(c echo.Context) error {
	owner, id, err := ids(c)
	if err != nil {
		return err
	}
	eid := c.Param("eid")
	sv, err := h.svc.Edit(c.Request().Context(), owner, id, func(b *survey.Builder) error {
		return b.Remove(eid)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sv)
}

func (h surveys) addChoice(c echo.Context) error {
	eid := c.Param("eid")
	return h.edit(c, func(b *survey.Builder) (survey.Element, error) {
		return b.AddChoice(eid)
	})
}

func (h surveys) removeChoice(c echo.Context) error {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "choice index must be a number")
	}
	eid := c.Param("eid")
	return h.edit(c, func(b *survey.Builder) (survey.Element, error) {
		return b.RemoveChoice(eid, i)
	})
}
