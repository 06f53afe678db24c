package web

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Peeetk/shop-backend/account/service"
	"github.com/Peeetk/shop-backend/internal/checkout"
	"github.com/Peeetk/shop-backend/internal/config"
	"github.com/Peeetk/shop-backend/internal/web/webpath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

type Server struct {
	accounts *service.Service
	checkout *checkout.Service
	app      *fiber.App
	cfg      config.Server
	log      *logrus.Entry
}

func New(l *logrus.Logger, cfg config.Server, accounts *service.Service, checkoutService *checkout.Service) *Server {
	server := Server{
		accounts: accounts,
		checkout: checkoutService,
		cfg:      cfg,
		log:      l.WithFields(map[string]interface{}{"from": "web"}),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: server.handleError,
	})
	app.Use(recover.New())
	if cfg.CorsOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigin,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Post(webpath.ApiRegister, server.handleRegister)
	app.Post(webpath.ApiLogin, server.handleLogin)
	app.Get(webpath.ApiMe, server.handleMe)
	app.Post(webpath.ApiChangePassword, server.handleChangePassword)
	app.Post(webpath.ApiDeleteAccount, server.handleDeleteAccount)
	app.Post(webpath.ApiForgotPassword, server.handleForgotPassword)
	if accounts.ResetMode() == service.ResetModeToken {
		app.Post(webpath.ApiResetPassword, server.handleResetPassword)
	}
	app.Post(webpath.ApiCheckout, server.handleCheckout)

	server.app = app
	return &server
}

func (s *Server) Serve() error {
	return s.app.Listen(s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleRegister(ctx *fiber.Ctx) error {
	var req registerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidInput
	}
	if err := req.validate(); err != nil {
		return err
	}
	account, err := s.accounts.Register(ctx.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(userResponse{Success: true, User: account})
}

func (s *Server) handleLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidCredentials
	}
	if err := req.validate(); err != nil {
		return err
	}
	account, token, err := s.accounts.Login(ctx.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(loginResponse{Success: true, Token: token, User: account})
}

func (s *Server) handleMe(ctx *fiber.Ctx) error {
	raw := strings.TrimPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer ")
	if raw == "" {
		return service.ErrInvalidToken
	}
	account, err := s.accounts.Me(ctx.Context(), raw)
	if err != nil {
		return err
	}
	return ctx.JSON(userResponse{Success: true, User: account})
}

func (s *Server) handleChangePassword(ctx *fiber.Ctx) error {
	var req changePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidInput
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := s.accounts.ChangePassword(ctx.Context(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return ctx.JSON(successResponse{Success: true})
}

func (s *Server) handleDeleteAccount(ctx *fiber.Ctx) error {
	var req deleteAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidInput
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(ctx.Context(), req.Email, req.Password); err != nil {
		return err
	}
	return ctx.JSON(successResponse{Success: true})
}

func (s *Server) handleForgotPassword(ctx *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidInput
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := s.accounts.ForgotPassword(ctx.Context(), req.Email); err != nil {
		return err
	}
	return ctx.JSON(successResponse{Success: true})
}

func (s *Server) handleResetPassword(ctx *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidInput
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := s.accounts.ResetPassword(ctx.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return ctx.JSON(successResponse{Success: true})
}

func (s *Server) handleCheckout(ctx *fiber.Ctx) error {
	var req checkoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return service.ErrInvalidInput
	}
	session, err := s.checkout.CreateSession(req.Items)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			return service.ErrInvalidInput
		}
		return err
	}
	return ctx.JSON(checkoutResponse{Success: true, Session: session})
}

// handleError maps service failures to status codes. Anything unknown
// logs internally and surfaces as a bare 500.
func (s *Server) handleError(ctx *fiber.Ctx, err error) error {
	var status int
	var msg string
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = fiber.StatusBadRequest, "invalid input"
	case errors.Is(err, service.ErrNotAuthorized):
		// Deliberately vague, the ledger contents must not leak.
		status, msg = fiber.StatusBadRequest, "registration is not available"
	case errors.Is(err, service.ErrAlreadyExists):
		status, msg = fiber.StatusConflict, "account already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		// One message for unknown email and wrong password.
		status, msg = fiber.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrNotFound):
		status, msg = fiber.StatusNotFound, "account not found"
	case errors.Is(err, service.ErrInvalidToken):
		status, msg = fiber.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, service.ErrUpstream):
		status, msg = fiber.StatusBadGateway, "service temporarily unavailable"
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(errorResponse{Success: false, Error: fiberErr.Message})
		}
		s.log.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		status, msg = fiber.StatusInternalServerError, "internal error"
	}
	return ctx.Status(status).JSON(errorResponse{Success: false, Error: msg})
}
