package handlers

import (
	"math"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/utils"
)

type AdminHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewAdminHandler(st *store.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: st, logger: logger}
}

// MetricsHandler builds the usage dashboard payload from whole-table
// scans. Admin traffic is rare enough that precomputing these would be
// premature.
func (h *AdminHandler) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionRows, err := h.store.ListSessions(ctx)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	scoreRows, err := h.store.ListAllScores(ctx)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	flagCount, err := h.store.CountRedFlags(ctx)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	recentEvents, err := h.store.ListRecentEvents(ctx, 50)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	totals := models.AdminMetricsTotals{
		Sessions: len(sessionRows),
		RedFlags: int(flagCount),
	}
	for _, s := range sessionRows {
		switch s.Status {
		case models.SessionLive:
			totals.Live++
		case models.SessionCompleted:
			totals.Completed++
		case models.SessionAborted:
			totals.Aborted++
		}
	}
	if len(scoreRows) > 0 {
		var sumScore, sumConfidence float64
		for _, s := range scoreRows {
			sumScore += float64(s.OverallScore)
			sumConfidence += s.Confidence
		}
		n := float64(len(scoreRows))
		totals.AvgOverallScore = math.Round(sumScore/n*10) / 10
		totals.AvgConfidence = math.Round(sumConfidence/n*100) / 100
	}

	counts := make(map[string]int)
	for _, e := range recentEvents {
		counts[e.EventType]++
	}
	topEvents := make([]models.EventTypeCount, 0, len(counts))
	for eventType, count := range counts {
		topEvents = append(topEvents, models.EventTypeCount{EventType: eventType, Count: count})
	}
	sort.Slice(topEvents, func(i, j int) bool {
		if topEvents[i].Count != topEvents[j].Count {
			return topEvents[i].Count > topEvents[j].Count
		}
		return topEvents[i].EventType < topEvents[j].EventType
	})
	if len(topEvents) > 10 {
		topEvents = topEvents[:10]
	}

	utils.JSON(w, http.StatusOK, models.AdminMetricsResponse{
		Totals:        totals,
		TopEventTypes: topEvents,
		RecentEvents:  recentEvents,
	})
}
