package handler

import (
	"github.com/gin-gonic/gin"

	sessionapp "ai-article-generator/internal/application/session"
	"ai-article-generator/internal/domain/session"
	"ai-article-generator/internal/interfaces/http/dto"
	"ai-article-generator/internal/interfaces/http/middleware"
)

// SessionHandler 会话配置接口
type SessionHandler struct {
	sessions *sessionapp.Service
}

// NewSessionHandler 创建会话配置处理器
func NewSessionHandler(sessions *sessionapp.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ListProviders 列出提供商与模型
// @Summary 提供商列表
// @Tags Session
// @Produce json
// @Success 200 {object} dto.Response[dto.ProvidersResponse]
// @Router /v1/providers [get]
func (h *SessionHandler) ListProviders(c *gin.Context) {
	dto.Success(c, dto.ToProvidersResponse(h.sessions.Registry()))
}

// GetSession 当前会话配置
// @Summary 会话配置
// @Tags Session
// @Produce json
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Router /v1/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	state, err := h.sessions.Load(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, state)
}

// SelectProvider 切换提供商，模型重置为该提供商的第一个模型
// @Summary 切换提供商
// @Tags Session
// @Accept json
// @Produce json
// @Param body body dto.SelectProviderRequest true "提供商"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/session/provider [put]
func (h *SessionHandler) SelectProvider(c *gin.Context) {
	var req dto.SelectProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := h.sessions.SelectProvider(c.Request.Context(), middleware.GetSessionID(c), req.Provider)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, state)
}

// SelectModel 选择模型
// @Summary 选择模型
// @Tags Session
// @Accept json
// @Produce json
// @Param body body dto.SelectModelRequest true "模型 ID 或展示名"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/session/model [put]
func (h *SessionHandler) SelectModel(c *gin.Context) {
	var req dto.SelectModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := h.sessions.SelectModel(c.Request.Context(), middleware.GetSessionID(c), req.Model)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, state)
}

// SaveAPISettings 保存 API Key 与超时
// @Summary 保存 API 设置
// @Tags Session
// @Accept json
// @Produce json
// @Param body body dto.SaveAPIRequest true "API 设置"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/session/api [put]
func (h *SessionHandler) SaveAPISettings(c *gin.Context) {
	var req dto.SaveAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	state, err := saveAPISettings(c, h.sessions, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, state)
}

// Probe 使用当前配置请求提供商的模型列表
// @Summary 探测提供商连通性
// @Tags Session
// @Produce json
// @Success 200 {object} dto.Response[dto.ProbeResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/session/probe [post]
func (h *SessionHandler) Probe(c *gin.Context) {
	ctx := c.Request.Context()
	id := middleware.GetSessionID(c)
	models, err := h.sessions.ProbeModels(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	state, err := h.sessions.Load(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, &dto.ProbeResponse{Provider: state.Config.Provider, Models: models})
}

func (h *SessionHandler) respond(c *gin.Context, state *session.State) {
	dto.Success(c, dto.ToSessionResponse(state, h.sessions.Registry(), h.sessions.UsingDefaultKey(state.Config)))
}

// saveAPISettings timeout 缺省时沿用会话当前值
func saveAPISettings(c *gin.Context, sessions *sessionapp.Service, req dto.SaveAPIRequest) (*session.State, error) {
	ctx := c.Request.Context()
	id := middleware.GetSessionID(c)
	var timeout float64
	if req.Timeout != nil {
		timeout = *req.Timeout
	} else {
		state, err := sessions.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		timeout = state.Config.Timeout
	}
	return sessions.SaveAPISettings(ctx, id, req.APIKey, timeout)
}
