package router

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-analyzer-go/internal/api/handler"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/processor"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, analysisHandler *handler.AnalysisHandler) {
	api := h.Group("/api/v1")

	api.POST("/resumes/analyze", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		jobDescription := ctx.PostForm("job_description")

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取文件失败"})
			return
		}

		report, err := analysisHandler.HandleAnalyze(c, fileHeader.Filename, data, jobDescription)
		if err != nil {
			ctx.JSON(statusForAnalyzeError(err), utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, report)
	})

	jobs := api.Group("/jobs")

	jobs.POST("/match", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobMatchRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误: " + err.Error()})
			return
		}

		resp, err := analysisHandler.HandleMatchJobs(c, &req)
		if err != nil {
			ctx.JSON(statusForServiceError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	jobs.POST("/index", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobIndexRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误: " + err.Error()})
			return
		}

		resp, err := analysisHandler.HandleIndexJobs(c, &req)
		if err != nil {
			ctx.JSON(statusForServiceError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	jobs.POST("/search", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobSearchRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误: " + err.Error()})
			return
		}

		resp, err := analysisHandler.HandleSearchJobs(c, &req)
		if err != nil {
			ctx.JSON(statusForServiceError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// statusForAnalyzeError 把分析错误映射为HTTP状态码
func statusForAnalyzeError(err error) int {
	switch {
	case errors.Is(err, processor.ErrEmptyFile),
		errors.Is(err, processor.ErrFileTooLarge),
		errors.Is(err, parser.ErrUnsupportedFormat):
		return consts.StatusBadRequest
	default:
		return consts.StatusInternalServerError
	}
}

// statusForServiceError 把岗位服务错误映射为HTTP状态码
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, handler.ErrInvalidRequest):
		return consts.StatusBadRequest
	case errors.Is(err, processor.ErrEmbedderNotInit),
		errors.Is(err, processor.ErrVectorStoreNotInit):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}
