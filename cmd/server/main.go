// Package main is the entry point for the ProjectDesk workflow service.
// It loads configuration, connects to PostgreSQL, runs migrations and wires
// the HTTP routes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/avissapr/projectdesk/internal/config"
	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/handlers"
	"github.com/avissapr/projectdesk/internal/logging"
	"github.com/avissapr/projectdesk/internal/middleware"
	"github.com/avissapr/projectdesk/internal/notify"
	"github.com/avissapr/projectdesk/internal/repository"
	"github.com/avissapr/projectdesk/internal/security"
	"github.com/avissapr/projectdesk/internal/services"
	"github.com/avissapr/projectdesk/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.Logger.OutputPath)
	log := logging.Logger

	pool, err := database.Connect(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Info("database connected")

	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Rate limiters for login and transition endpoints.
	loginLimiter := security.NewRateLimiter(
		cfg.Limits.LoginPerMinute,
		time.Minute/time.Duration(cfg.Limits.LoginPerMinute),
	)
	defer loginLimiter.Stop()

	transitionLimiter := security.NewRateLimiter(
		cfg.Limits.TransitionPerMinute,
		time.Minute/time.Duration(cfg.Limits.TransitionPerMinute),
	)
	defer transitionLimiter.Stop()

	store := session.New(session.Config{
		Expiration:     cfg.Session.Expiration,
		CookieSecure:   cfg.Session.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieName:     cfg.Session.CookieName,
		CookiePath:     "/",
	})

	repos := repository.NewStore(pool)
	notifier := notify.NewLogNotifier(log)
	svc := workflow.NewService(pool, notifier, workflow.DefaultApprovalPolicy(), workflow.Limits{
		MaxTitleLength:   cfg.Limits.MaxTitleLength,
		MaxContentLength: cfg.Limits.MaxContentLength,
		QueryTimeout:     cfg.Limits.QueryTimeout,
	}, log)

	authHandler := handlers.NewAuthHandler(store, services.NewAuthService(repos.Users), log)
	workflowHandler := handlers.NewWorkflowHandler(svc, repos, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Panic recovery first.
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/api/login", middleware.RateLimit(loginLimiter), authHandler.Login)
	app.Post("/api/logout", authHandler.Logout)

	// Everything else requires a session.
	api := app.Group("/api", middleware.AuthRequired(store))

	// Department tasks
	api.Post("/projects/:id/departments/:deptID/tasks", workflowHandler.CreateDepartmentTask)
	api.Get("/projects/:id/tasks", workflowHandler.ListDepartmentTasks)
	api.Post("/department-tasks/:id/status",
		middleware.RateLimit(transitionLimiter),
		workflowHandler.TransitionDepartmentTask,
	)
	api.Delete("/department-tasks/:id", workflowHandler.DeleteDepartmentTask)

	// Member tasks
	api.Post("/department-tasks/:id/members", workflowHandler.AssignMemberTask)
	api.Get("/department-tasks/:id/members", workflowHandler.ListMemberTasks)
	api.Post("/member-tasks/:id/status",
		middleware.RateLimit(transitionLimiter),
		workflowHandler.TransitionMemberTask,
	)
	api.Post("/member-tasks/:id/progress", workflowHandler.UpdateMemberTaskProgress)
	api.Delete("/member-tasks/:id", workflowHandler.DeleteMemberTask)

	// Reports and warnings
	api.Post("/projects/:id/reports", workflowHandler.FileReport)
	api.Get("/projects/:id/reports", workflowHandler.ListReports)
	api.Post("/projects/:id/warnings", workflowHandler.IssueWarning)
	api.Get("/projects/:id/warnings", workflowHandler.ListWarnings)
	api.Post("/warnings/:id/acknowledge", workflowHandler.AcknowledgeWarning)

	// Stats and audit
	api.Get("/projects/:id/stats", workflowHandler.GetProjectStats)
	api.Get("/audit", middleware.AdminOnly(), workflowHandler.ViewAuditLog)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("projectdesk listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
