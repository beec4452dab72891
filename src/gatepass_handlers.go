package main

import (
	"campusgate/src/controllers"
	"campusgate/src/gatepass"
	"campusgate/src/middlewares"
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondError(ctx *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("[gatepass] Error handling %s %s: %s\n", ctx.Request.Method, ctx.FullPath(), err.Error())
	}
	ctx.JSON(status, controllers.ErrorBody(err))
}

// queueHandler serves a role-specific read queue.
func queueHandler(list func(ctx context.Context, actorID uint) ([]models.GatePass, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p := middlewares.CurrentPerson(ctx)
		passes, err := list(ctx.Request.Context(), p.ID)
		if err != nil {
			respondError(ctx, controllers.StatusFor(err), err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": passes})
	}
}

func decisionHandler(svc *gatepass.Service, stage gatepass.Stage) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		gp, status, err := controllers.DecideGatePass(ctx, svc, stage)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		ctx.JSON(status, gin.H{"data": gp})
	}
}

func gatePassHandlers(g *gin.RouterGroup, svc *gatepass.Service) *gin.RouterGroup {
	requesters := middlewares.RequireRoles(types.ROLE_STUDENT, types.ROLE_STAFF, types.ROLE_HOD)
	security := middlewares.RequireRoles(types.ROLE_SECURITY)

	g.
		POST("/gate-passes", requesters, func(ctx *gin.Context) {
			gp, status, err := controllers.CreateGatePass(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": gp})
		}).
		GET("/gate-passes", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			passes, status, err := controllers.ListGatePasses(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": passes})
		}).
		GET("/gate-passes/my-requests", requesters, func(ctx *gin.Context) {
			passes, status, err := controllers.MyGatePasses(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": passes})
		}).
		GET("/gate-passes/pending-staff-approval", middlewares.RequireRoles(types.ROLE_STAFF),
			queueHandler(svc.PendingForStaff)).
		GET("/gate-passes/pending-hod-approval", middlewares.RequireRoles(types.ROLE_HOD),
			queueHandler(svc.PendingForHod)).
		GET("/gate-passes/pending-hostel-warden-approval", middlewares.RequireRoles(types.ROLE_HOSTEL_WARDEN),
			queueHandler(func(ctx context.Context, _ uint) ([]models.GatePass, error) {
				return svc.PendingForHostelWarden(ctx)
			})).
		GET("/gate-passes/pending-academic-director-approval", middlewares.RequireRoles(types.ROLE_ACADEMIC_DIRECTOR),
			queueHandler(func(ctx context.Context, _ uint) ([]models.GatePass, error) {
				return svc.PendingForAcademicDirector(ctx)
			})).
		GET("/gate-passes/for-security-verification", security,
			queueHandler(func(ctx context.Context, _ uint) ([]models.GatePass, error) {
				return svc.ForSecurityVerification(ctx)
			})).
		GET("/gate-passes/security-pending", security,
			queueHandler(func(ctx context.Context, _ uint) ([]models.GatePass, error) {
				return svc.SecurityPending(ctx)
			})).
		GET("/gate-passes/security-used", security,
			queueHandler(func(ctx context.Context, _ uint) ([]models.GatePass, error) {
				return svc.SecurityUsed(ctx)
			})).
		POST("/gate-passes/verify-code", security, func(ctx *gin.Context) {
			gp, status, err := controllers.VerifyGatePassCode(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": gp})
		}).
		GET("/gate-passes/:id", func(ctx *gin.Context) {
			gp, status, err := controllers.GetGatePass(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": gp})
		}).
		GET("/gate-passes/:id/trail", func(ctx *gin.Context) {
			rows, status, err := controllers.GatePassTrail(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": rows})
		}).
		GET("/gate-passes/:id/qrcode", requesters, func(ctx *gin.Context) {
			url, file, status, err := controllers.GatePassQRCode(ctx, svc)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			if url != nil {
				ctx.JSON(status, gin.H{"data": gin.H{"url": *url}})
				return
			}
			ctx.File(file)
		}).
		PATCH("/gate-passes/:id/staff-approval", middlewares.RequireRoles(types.ROLE_STAFF),
			decisionHandler(svc, gatepass.StageStaff)).
		PATCH("/gate-passes/:id/hod-approval", middlewares.RequireRoles(types.ROLE_HOD),
			decisionHandler(svc, gatepass.StageHod)).
		PATCH("/gate-passes/:id/hostel-warden-approval", middlewares.RequireRoles(types.ROLE_HOSTEL_WARDEN),
			decisionHandler(svc, gatepass.StageHostelWarden)).
		PATCH("/gate-passes/:id/academic-director-approval", middlewares.RequireRoles(types.ROLE_ACADEMIC_DIRECTOR),
			decisionHandler(svc, gatepass.StageAcademicDirector)).
		PATCH("/gate-passes/:id/security-verification", security,
			decisionHandler(svc, gatepass.StageSecurity))

	return g
}
