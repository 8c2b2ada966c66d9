package tracker

import (
	"errors"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"

	"github.com/gofiber/fiber/v2"
)

type position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RegisterRoutes exposes the controller to the browser client. locator is the
// client-reported position source; it is nil when the server has a fixed
// start position, and the geolocation routes then answer 409.
func RegisterRoutes(r fiber.Router, ctrl *Controller, locator *geo.ClientLocator) {
	r.Get("/workouts", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Workouts())
	})

	r.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Snapshot())
	})

	r.Post("/geolocation", func(c *fiber.Ctx) error {
		if locator == nil {
			return fiber.NewError(fiber.StatusConflict, "position is fixed by the server")
		}
		var body position
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		coords := geo.NewCoords(body.Lat, body.Lng)
		if err := geo.ValidateCoords(coords); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		locator.Report(coords)
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/geolocation/unavailable", func(c *fiber.Ctx) error {
		if locator == nil {
			return fiber.NewError(fiber.StatusConflict, "position is fixed by the server")
		}
		locator.Deny()
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/map/clicks", func(c *fiber.Ctx) error {
		var body position
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return dispatch(c, ctrl, MapClicked{Coords: geo.NewCoords(body.Lat, body.Lng)}, fiber.StatusOK)
	})

	r.Post("/form", func(c *fiber.Ctx) error {
		var sub workout.Submission
		if c.Is("json") {
			if err := c.BodyParser(&sub); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		} else {
			sub = workout.ParseSubmission(
				c.FormValue("type"),
				c.FormValue("distance"),
				c.FormValue("duration"),
				c.FormValue("cadence"),
				c.FormValue("elevation"),
			)
		}
		return dispatch(c, ctrl, FormSubmitted{Submission: sub}, fiber.StatusCreated)
	})

	r.Delete("/form", func(c *fiber.Ctx) error {
		return dispatch(c, ctrl, FormCancelled{}, fiber.StatusOK)
	})

	r.Post("/workouts/:id/focus", func(c *fiber.Ctx) error {
		return dispatch(c, ctrl, ListItemClicked{ID: c.Params("id")}, fiber.StatusOK)
	})

	r.Post("/reset", func(c *fiber.Ctx) error {
		return dispatch(c, ctrl, ResetRequested{}, fiber.StatusOK)
	})
}

func dispatch(c *fiber.Ctx, ctrl *Controller, ev Event, status int) error {
	out, err := ctrl.Dispatch(c.UserContext(), ev)
	if err != nil {
		return statusError(err, out)
	}
	return c.Status(status).JSON(out)
}

func statusError(err error, out Outcome) error {
	switch {
	case errors.Is(err, workout.ErrInvalidInput), errors.Is(err, workout.ErrUnknownType):
		msg := out.Warning
		if msg == "" {
			msg = err.Error()
		}
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	case errors.Is(err, geo.ErrInvalidCoords):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownWorkout):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrIgnored):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrStopped):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
