package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"bizdash/internal/models"
	"bizdash/internal/pdf"
	"bizdash/internal/scheduler"
	"bizdash/internal/services"
)

type SchedulerHandler struct {
	sessions  *services.SessionStore
	digest    services.DigestService // nil when no recipients are configured
	pdf       pdf.Generator
	persister services.Persister // nil without a database
}

func NewSchedulerHandler(sessions *services.SessionStore, digest services.DigestService, gen pdf.Generator, persister services.Persister) *SchedulerHandler {
	return &SchedulerHandler{sessions: sessions, digest: digest, pdf: gen, persister: persister}
}

// session returns the caller's page, fetching once when it is new.
func (h *SchedulerHandler) session(c *gin.Context) services.SchedulerService {
	userID, _ := getUserAndRole(c)
	svc, fresh := h.sessions.Get(sessionKey(c))
	if fresh {
		log.Printf("[scheduler][session][new] userID=%d", userID)
		if err := svc.Refresh(c.Request.Context()); err != nil {
			log.Printf("[scheduler][session][err] userID=%d initial fetch: %v", userID, err)
		}
	}
	return svc
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidField),
		errors.Is(err, services.ErrEmptyPatch),
		errors.Is(err, services.ErrUnknownScope):
		return http.StatusBadRequest
	case errors.Is(err, scheduler.ErrInvalidTransition),
		errors.Is(err, scheduler.ErrNothingDragged):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func renderOptions(c *gin.Context) (services.RenderOptions, error) {
	opts := services.RenderOptions{GroupByDueDate: c.Query("group") == "due_date"}
	if s := c.Query("month_offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("invalid month_offset")
		}
		opts.MonthOffset = n
	}
	return opts, nil
}

var facetKeys = []string{"types", "statuses", "priorities", "assigned_to", "search"}

// applyQuery moves the session to the period, view and facets named in the
// query. Only changed values trigger a fetch.
func applyQuery(c *gin.Context, svc services.SchedulerService) error {
	current := svc.Render(services.RenderOptions{})

	if s := c.Query("view"); s != "" {
		v, err := models.ParseViewMode(s)
		if err != nil {
			return err
		}
		if err := svc.SetView(v); err != nil {
			return err
		}
	}

	if s := c.Query("period"); s != "" {
		p, err := models.ParseTimePeriod(s)
		if err != nil {
			return err
		}
		if p != current.Period {
			if err := svc.SetTimePeriod(c.Request.Context(), p); err != nil {
				log.Printf("[scheduler][view][fetch][err] %v", err)
			}
		}
	}

	hasFacets := false
	for _, k := range facetKeys {
		if _, ok := c.GetQuery(k); ok {
			hasFacets = true
			break
		}
	}
	if !hasFacets {
		return nil
	}
	f, err := scheduler.ParseFacets(c.Query("types"), c.Query("statuses"), c.Query("priorities"),
		c.Query("assigned_to"), c.Query("search"))
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(f, current.Facets) {
		if err := svc.SetFacets(c.Request.Context(), f); err != nil {
			log.Printf("[scheduler][view][fetch][err] %v", err)
		}
	}
	return nil
}

// @Summary      Scheduler page
// @Description  Renders the current view (list, kanban or calendar) with header stats
// @Tags         Scheduler
// @Produce      json
// @Param        period        query  string  false  "today|week|month|all"
// @Param        view          query  string  false  "list|kanban|calendar"
// @Param        types         query  string  false  "comma separated item types"
// @Param        statuses      query  string  false  "comma separated statuses"
// @Param        priorities    query  string  false  "comma separated priorities"
// @Param        assigned_to   query  string  false  "assignee id"
// @Param        search        query  string  false  "title, description or tag substring"
// @Param        group         query  string  false  "due_date groups the list view"
// @Param        month_offset  query  int     false  "calendar month relative to the current one"
// @Success      200  {object}  services.PageView
// @Failure      400  {object}  map[string]string
// @Router       /scheduler/view [get]
func (h *SchedulerHandler) View(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[scheduler][view] call by userID=%d role=%d query=%q", userID, roleID, c.Request.URL.RawQuery)

	svc := h.session(c)
	if err := applyQuery(c, svc); err != nil {
		log.Printf("[scheduler][view][bad] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts, err := renderOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, svc.Render(opts))
}

// @Summary      Scheduler stats
// @Tags         Scheduler
// @Produce      json
// @Param        scope  query  string  false  "filtered|window|all"
// @Success      200  {object}  models.Stats
// @Failure      400  {object}  map[string]string
// @Router       /scheduler/stats [get]
func (h *SchedulerHandler) Stats(c *gin.Context) {
	svc := h.session(c)
	st, err := svc.Stats(services.StatsScope(c.DefaultQuery("scope", string(services.ScopeFiltered))))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Re-fetch scheduler items
// @Tags         Scheduler
// @Produce      json
// @Success      200  {object}  services.PageView
// @Failure      502  {object}  map[string]string
// @Router       /scheduler/refresh [post]
func (h *SchedulerHandler) Refresh(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	svc, fresh := h.sessions.Get(sessionKey(c))
	if fresh {
		log.Printf("[scheduler][session][new] userID=%d", userID)
	}
	if err := svc.Refresh(c.Request.Context()); err != nil {
		log.Printf("[scheduler][refresh][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load scheduler items"})
		return
	}
	c.JSON(http.StatusOK, svc.Render(services.RenderOptions{}))
}

// @Summary      Update an item
// @Tags         Scheduler
// @Accept       json
// @Produce      json
// @Param        id     path  string            true  "item id"
// @Param        patch  body  models.ItemPatch  true  "fields to change"
// @Success      200  {object}  models.SchedulerItem
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /scheduler/items/{id} [put]
func (h *SchedulerHandler) UpdateItem(c *gin.Context) {
	var patch models.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		log.Printf("[scheduler][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.session(c).UpdateItem(c.Param("id"), patch)
	if err != nil {
		log.Printf("[scheduler][update][err] id=%s: %v", c.Param("id"), err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary      Change item status
// @Tags         Scheduler
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "item id"
// @Success      200  {object}  models.SchedulerItem
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /scheduler/items/{id}/status [post]
func (h *SchedulerHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		To models.ItemStatus `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.session(c).ChangeStatus(c.Param("id"), req.To)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary      Mark an item completed
// @Tags         Scheduler
// @Produce      json
// @Param        id  path  string  true  "item id"
// @Success      200  {object}  models.SchedulerItem
// @Failure      404  {object}  map[string]string
// @Router       /scheduler/items/{id}/complete [post]
func (h *SchedulerHandler) CompleteItem(c *gin.Context) {
	item, err := h.session(c).CompleteItem(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary      Start dragging a kanban card
// @Tags         Scheduler
// @Accept       json
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /scheduler/kanban/drag [post]
func (h *SchedulerHandler) StartDrag(c *gin.Context) {
	var req struct {
		ItemID string `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.session(c).StartDrag(req.ItemID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Drop the dragged card on a column
// @Tags         Scheduler
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.SchedulerItem
// @Failure      409  {object}  map[string]string
// @Router       /scheduler/kanban/drop [post]
func (h *SchedulerHandler) Drop(c *gin.Context) {
	var req struct {
		Status models.ItemStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.session(c).Drop(req.Status)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary      Local changes not yet persisted
// @Tags         Scheduler
// @Produce      json
// @Success      200  {array}  models.PendingWrite
// @Router       /scheduler/pending-writes [get]
func (h *SchedulerHandler) PendingWrites(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).PendingWrites())
}

// @Summary      Persist local changes
// @Tags         Scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /scheduler/pending-writes/flush [post]
func (h *SchedulerHandler) FlushPendingWrites(c *gin.Context) {
	if h.persister == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no persistence configured"})
		return
	}
	svc := h.session(c)
	n, err := svc.FlushPendingWrites(c.Request.Context(), h.persister)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "applied": n, "remaining": len(svc.PendingWrites())})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": n, "remaining": len(svc.PendingWrites())})
}

// @Summary      Send the overdue and due-today digest
// @Tags         Scheduler
// @Produce      json
// @Success      200  {object}  services.DigestReport
// @Failure      502  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /scheduler/digest [post]
func (h *SchedulerHandler) SendDigest(c *gin.Context) {
	if h.digest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "digest is not configured"})
		return
	}
	report, err := h.digest.Send(c.Request.Context())
	if err != nil {
		log.Printf("[scheduler][digest][err] %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary      Export the list view as PDF
// @Tags         Scheduler
// @Produce      application/pdf
// @Param        group  query  string  false  "due_date groups the rows"
// @Success      200  {file}  file
// @Failure      409  {object}  map[string]string
// @Router       /scheduler/export.pdf [get]
func (h *SchedulerHandler) ExportPDF(c *gin.Context) {
	svc := h.session(c)
	pv := svc.Render(services.RenderOptions{View: models.ViewList, GroupByDueDate: c.Query("group") == "due_date"})
	if pv.Loading || pv.List == nil || pv.Stats == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "scheduler items are not loaded"})
		return
	}
	at := pv.FetchedAt
	data := pdf.ScheduleData{
		Title:  fmt.Sprintf("Schedule: %s", pv.Period),
		Period: pv.Period,
		Stats:  *pv.Stats,
		List:   *pv.List,
	}
	if at != nil {
		data.GeneratedAt = *at
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule_%s.pdf"`, pv.Period))
	if err := h.pdf.ScheduleReport(c.Writer, data); err != nil {
		log.Printf("[scheduler][export][err] %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
}

// @Summary      Forget the caller's scheduler session
// @Tags         Scheduler
// @Success      204
// @Router       /scheduler/session [delete]
func (h *SchedulerHandler) DropSession(c *gin.Context) {
	h.sessions.Drop(sessionKey(c))
	c.Status(http.StatusNoContent)
}
