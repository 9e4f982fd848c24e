package server

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"feastiq/internal/domain"
	"feastiq/internal/model"
	"feastiq/internal/service/auth"
	"feastiq/internal/service/export"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

// reserve принимает форму как есть: значения не проверяются.
func (s *Server) reserve(c *gin.Context) {
	ctx := c.Request.Context()
	res := &model.Reservation{
		Name:    c.PostForm("name"),
		Phone:   c.PostForm("phone"),
		Email:   c.PostForm("email"),
		Guests:  c.PostForm("person"),
		Date:    c.PostForm("reservation_date"),
		Time:    c.PostForm("reservation_time"),
		Message: c.PostForm("message"),
	}

	channels := s.Dispatcher.Channels()
	if err := s.Reservations.CreateReservation(ctx, res, channels); err != nil {
		internalError(c, s.Logger, "error creating reservation", err)
		return
	}
	s.Logger.Info("reservation created", zap.Uint("reservation_id", res.ID), zap.Strings("channels", channels))

	if s.SyncMail && slices.Contains(channels, model.ChannelEmail) {
		if err := s.Dispatcher.DeliverNow(ctx, res.ID, model.ChannelEmail); err != nil {
			internalError(c, s.Logger, "error sending confirmation", err)
			return
		}
	}
	s.Dispatcher.Notify()

	c.Redirect(http.StatusFound, "/")
}

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login.html", nil)
}

func (s *Server) login(c *gin.Context) {
	principal, err := s.Auth.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.Logger.Warn("admin login rejected", zap.String("client_ip", c.ClientIP()))
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		internalError(c, s.Logger, "error authenticating admin", err)
		return
	}

	if err := s.Sessions.Login(c, principal); err != nil {
		internalError(c, s.Logger, "error opening admin session", err)
		return
	}
	s.Logger.Info("admin logged in", zap.String("admin", principal))
	c.Redirect(http.StatusFound, "/admin/reservation")
}

func (s *Server) logout(c *gin.Context) {
	s.Sessions.Logout(c)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) listReservations(c *gin.Context) {
	ctx := c.Request.Context()
	rs, err := s.Reservations.ListReservations(ctx, domain.OrderNewestFirst)
	if err != nil {
		internalError(c, s.Logger, "error listing reservations", err)
		return
	}
	total, err := s.Reservations.CountReservations(ctx)
	if err != nil {
		internalError(c, s.Logger, "error counting reservations", err)
		return
	}
	c.HTML(http.StatusOK, "admin_reservations.html", gin.H{
		"reservations": rs,
		"total":        total,
		"admin":        c.GetString(principalKey),
	})
}

func (s *Server) exportCSV(c *gin.Context) {
	rs, err := s.Reservations.ListReservations(c.Request.Context(), domain.OrderInserted)
	if err != nil {
		internalError(c, s.Logger, "error listing reservations", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rs); err != nil {
		internalError(c, s.Logger, "error writing csv", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=reservations.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) deleteReservation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	err = s.Reservations.DeleteReservation(c.Request.Context(), uint(id))
	if errors.Is(err, domain.ErrNotFound) {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		internalError(c, s.Logger, "error deleting reservation", err)
		return
	}
	s.Logger.Info("reservation deleted", zap.Uint64("reservation_id", id), zap.String("admin", c.GetString(principalKey)))
	c.Redirect(http.StatusFound, "/admin/reservation")
}
