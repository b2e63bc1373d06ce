// handlers/routes.go
package handlers

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leetcode-companion/logger"
	"leetcode-companion/models"
	"leetcode-companion/services"
)

// ProblemPicker returns a random free problem of a difficulty.
type ProblemPicker interface {
	FetchRandomByDifficulty(ctx context.Context, level string) (*models.Problem, error)
}

// AppStateKeeper holds the shell's navigation snapshot and runs manual notification checks.
type AppStateKeeper interface {
	UpdateState(step string, user *models.SessionUser, daily *models.SessionDaily)
	ClearState()
	Trigger(ctx context.Context) error
}

// Deps are the collaborators behind the dispatcher endpoints.
type Deps struct {
	Validator *services.UsernameValidator
	Groups    *services.GroupService
	Daily     *services.DailyService
	XP        *services.XPService
	Bounties  *services.BountyService
	Catalog   ProblemPicker
	AppState  AppStateKeeper
	OpenURL   func(rawURL string) error
	Gatherer  prometheus.Gatherer
}

type usernameArgs struct {
	Username string `json:"username"`
}

type joinArgs struct {
	Username   string `json:"username"`
	InviteCode string `json:"inviteCode"`
}

type groupArgs struct {
	GroupID string `json:"groupId"`
}

type urlArgs struct {
	URL string `json:"url"`
}

type difficultyArgs struct {
	Difficulty string `json:"difficulty"`
}

type bountyProgressArgs struct {
	Username string `json:"username"`
	BountyID string `json:"bountyId"`
	Progress int64  `json:"progress"`
}

type appStateArgs struct {
	Step      string               `json:"step"`
	UserData  *models.SessionUser  `json:"userData"`
	DailyData *models.SessionDaily `json:"dailyData"`
}

func failure(c *fiber.Ctx, msg string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

// bind decodes the JSON body into the handler's argument struct.
// An empty body leaves the arguments zero; a malformed one answers 400.
func bind[T any](fn func(c *fiber.Ctx, args T) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var args T
		if len(c.Body()) > 0 {
			if err := c.App().Config().JSONDecoder(c.Body(), &args); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid request body",
					"cause": err.Error(),
				})
			}
		}
		return fn(c, args)
	}
}

// SetupRoutes exposes every backend operation as POST /api/<name>.
func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	validate := bind(func(c *fiber.Ctx, a usernameArgs) error {
		return c.JSON(d.Validator.Validate(c.UserContext(), a.Username))
	})
	api.Post("/validate-username", validate)
	api.Post("/validate-leetcode-username", validate)

	api.Post("/create-group", bind(func(c *fiber.Ctx, a usernameArgs) error {
		groupID, err := d.Groups.CreateGroup(c.UserContext(), a.Username)
		if err != nil {
			return failure(c, "failed to create group", err)
		}
		return c.JSON(fiber.Map{"groupId": groupID})
	}))

	api.Post("/join-group", bind(func(c *fiber.Ctx, a joinArgs) error {
		if err := d.Groups.JoinGroup(c.UserContext(), a.Username, a.InviteCode); err != nil {
			return failure(c, "failed to join group", err)
		}
		return c.JSON(fiber.Map{"joined": true, "groupId": a.InviteCode})
	}))

	api.Post("/get-stats-for-group", bind(func(c *fiber.Ctx, a groupArgs) error {
		return c.JSON(d.Groups.Leaderboard(c.UserContext(), a.GroupID))
	}))

	api.Post("/get-user-data", bind(func(c *fiber.Ctx, a usernameArgs) error {
		return c.JSON(d.Groups.UserData(c.UserContext(), a.Username))
	}))

	api.Post("/leave-group", bind(func(c *fiber.Ctx, a usernameArgs) error {
		if err := d.Groups.LeaveGroup(c.UserContext(), a.Username); err != nil {
			return failure(c, "failed to leave group", err)
		}
		return c.JSON(fiber.Map{"left": true})
	}))

	api.Post("/open-external-url", bind(func(c *fiber.Ctx, a urlArgs) error {
		u, err := url.Parse(a.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "only http and https URLs can be opened",
			})
		}
		if err := d.OpenURL(u.String()); err != nil {
			logger.Log.WithError(err).Error("[open-external-url] failed")
			return failure(c, "failed to open url", err)
		}
		return c.JSON(fiber.Map{"success": true})
	}))

	api.Post("/fetch-random-problem", bind(func(c *fiber.Ctx, a difficultyArgs) error {
		problem, err := d.Catalog.FetchRandomByDifficulty(c.UserContext(), a.Difficulty)
		if err != nil {
			logger.Log.WithError(err).Error("[fetch-random-problem] failed")
			if errors.Is(err, services.ErrNoEligibleProblems) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}
			return failure(c, "failed to fetch random problem", err)
		}
		return c.JSON(problem)
	}))

	api.Post("/get-daily-problem", bind(func(c *fiber.Ctx, a usernameArgs) error {
		return c.JSON(d.Daily.Status(c.UserContext(), a.Username))
	}))

	api.Post("/complete-daily-problem", bind(func(c *fiber.Ctx, a usernameArgs) error {
		return c.JSON(d.Daily.Complete(c.UserContext(), a.Username))
	}))

	refreshXP := bind(func(c *fiber.Ctx, a usernameArgs) error {
		res, _ := d.XP.RefreshXP(c.UserContext(), a.Username)
		return c.JSON(res)
	})
	api.Post("/fix-user-xp", refreshXP)
	api.Post("/refresh-user-xp", refreshXP)

	api.Post("/get-bounties", bind(func(c *fiber.Ctx, a usernameArgs) error {
		bounties, err := d.Bounties.ListBounties(c.UserContext(), a.Username)
		if err != nil {
			return c.JSON([]models.Bounty{})
		}
		return c.JSON(bounties)
	}))

	api.Post("/update-bounty-progress", bind(func(c *fiber.Ctx, a bountyProgressArgs) error {
		if err := d.Bounties.UpdateProgress(c.UserContext(), a.Username, a.BountyID, a.Progress); err != nil {
			return c.JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "progress": a.Progress})
	}))

	api.Post("/check-daily-notification", func(c *fiber.Ctx) error {
		if err := d.AppState.Trigger(c.UserContext()); err != nil {
			logger.Log.WithError(err).Error("[check-daily-notification] check failed")
		}
		return c.JSON(fiber.Map{"success": true})
	})

	api.Post("/update-app-state", bind(func(c *fiber.Ctx, a appStateArgs) error {
		d.AppState.UpdateState(a.Step, a.UserData, a.DailyData)
		return c.JSON(fiber.Map{"success": true})
	}))

	api.Post("/clear-app-state", func(c *fiber.Ctx) error {
		d.AppState.ClearState()
		return c.JSON(fiber.Map{"success": true})
	})
}
