package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"

	"survivalboard/middleware"
	"survivalboard/services"
	"survivalboard/utils/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReapResponse lists the sessions a sweep abandoned
type ReapResponse struct {
	Abandoned []string `json:"abandoned"`
	Count     int      `json:"count"`
}

// Handler serves operator endpoints
type Handler struct {
	sessions *services.SessionService
	reaper   *services.Reaper
	secret   string
	log      logrus.FieldLogger
}

func NewHandler(sessions *services.SessionService, reaper *services.Reaper, secret string, log logrus.FieldLogger) *Handler {
	return &Handler{sessions: sessions, reaper: reaper, secret: secret, log: log}
}

// RegisterRoutes registers the admin routes behind bearer token auth
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(h.secret))
	{
		admin.POST("/reap", h.Reap)
		admin.GET("/sessions/export", h.ExportSessions)
	}
}

// Reap runs one reaper sweep now
// @Summary Run the session reaper
// @Tags Admin
// @Produce json
// @Success 200 {object} ReapResponse
// @Failure 401 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /admin/reap [post]
// @Security Bearer
func (h *Handler) Reap(c *gin.Context) {
	ids, err := h.reaper.Sweep(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("manual reaper sweep failed")
		response.Error(c, codes.Internal, "internal error")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	response.Success(c, http.StatusOK, ReapResponse{Abandoned: ids, Count: len(ids)})
}

// ExportSessions downloads the session audit trail as a workbook
// @Summary Export sessions
// @Description One sheet per status; restrict to one status with the query parameter
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "active, finished or abandoned"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /admin/sessions/export [get]
// @Security Bearer
func (h *Handler) ExportSessions(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.FromStatus(c, err)
		return
	}

	f, err := services.ExportSessions(sessions)
	if err != nil {
		h.log.WithError(err).Error("session export failed")
		response.Error(c, codes.Internal, "internal error")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("sessions-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("writing session export failed")
	}
}
