// Package api holds the HTTP handlers.
package api

import (
	"time"

	"github.com/grounded-ai/groundedqa/internal/config"
	"github.com/grounded-ai/groundedqa/internal/models"
	"github.com/grounded-ai/groundedqa/internal/services/qa"
	"github.com/grounded-ai/groundedqa/internal/services/request"
	"github.com/grounded-ai/groundedqa/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// AnswerHandler serves POST /v1/answers.
type AnswerHandler struct {
	cfg     *config.Config
	qaSvc   *qa.Service
	reqSvc  *request.Service
	respSvc *response.Service
}

// NewAnswerHandler wires up the answer endpoint.
func NewAnswerHandler(cfg *config.Config, qaSvc *qa.Service, reqSvc *request.Service, respSvc *response.Service) *AnswerHandler {
	return &AnswerHandler{
		cfg:     cfg,
		qaSvc:   qaSvc,
		reqSvc:  reqSvc,
		respSvc: respSvc,
	}
}

// Answer runs the QA pipeline for one request. Request fields override the
// configured defaults; the merged config is schema-checked before the
// pipeline applies its stricter policy checks.
func (h *AnswerHandler) Answer(c *fiber.Ctx) error {
	reqID := h.reqSvc.GetRequestID(c)
	start := time.Now()
	fiberlog.Infof("[%s] starting answer request", reqID)

	var req models.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respSvc.BadRequest(c, "invalid request body", reqID)
	}

	cfg := h.resolveConfig(req)
	if err := cfg.ValidateSchema(); err != nil {
		return h.respSvc.HandleError(c, err, reqID)
	}

	result, err := h.qaSvc.Answer(c.UserContext(), req.Question, req.Context, cfg, reqID)
	if err != nil {
		return h.respSvc.HandleError(c, err, reqID)
	}

	fiberlog.Infof("[%s] answer request completed in %v", reqID, time.Since(start))
	return h.respSvc.Success(c, models.AnswerResponse{
		Answer:    result.Answer,
		Model:     cfg.Model,
		RequestID: reqID,
		ElapsedMs: time.Since(start).Milliseconds(),
		CacheTier: result.CacheTier,
	})
}

// resolveConfig merges request overrides onto the configured QA defaults.
func (h *AnswerHandler) resolveConfig(req models.AnswerRequest) models.QAConfig {
	cfg := h.cfg.QA

	if req.Model != "" {
		cfg.Model = req.Model
	}
	if req.Temperature != nil {
		cfg.Temperature = *req.Temperature
	}
	if req.MaxContextChars != nil {
		cfg.MaxContextChars = *req.MaxContextChars
	}
	if req.RateLimitIdentifier != "" {
		cfg.RateLimitIdentifier = req.RateLimitIdentifier
	}

	return cfg
}
