package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdash/internal/authz"
	"bizdash/internal/handlers"
	"bizdash/internal/middleware"
)

func SetupRoutes(r *gin.Engine, jwtSecret []byte, schedulerHandler *handlers.SchedulerHandler) *gin.Engine {
	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	sched := r.Group("/scheduler",
		middleware.RequireRoles(authz.RoleConsultant, authz.RoleOperations, authz.RoleAuditor, authz.RoleManagement, authz.RoleAdmin),
	)
	{
		sched.GET("/view", schedulerHandler.View)
		sched.GET("/stats", schedulerHandler.Stats)
		sched.POST("/refresh", schedulerHandler.Refresh)
		sched.GET("/pending-writes", schedulerHandler.PendingWrites)
		sched.GET("/export.pdf", schedulerHandler.ExportPDF)
		sched.DELETE("/session", schedulerHandler.DropSession)
	}

	// mutations: auditors are read-only
	mut := sched.Group("", middleware.ReadOnlyGuard())
	{
		mut.PUT("/items/:id", schedulerHandler.UpdateItem)
		mut.POST("/items/:id/status", schedulerHandler.ChangeStatus)
		mut.POST("/items/:id/complete", schedulerHandler.CompleteItem)
		mut.POST("/kanban/drag", schedulerHandler.StartDrag)
		mut.POST("/kanban/drop", schedulerHandler.Drop)
		mut.POST("/pending-writes/flush", schedulerHandler.FlushPendingWrites)
	}

	sched.POST("/digest", middleware.RequireElevated(), schedulerHandler.SendDigest)

	return r
}
