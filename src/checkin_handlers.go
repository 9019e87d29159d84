package main

import (
	"log"
	"net/http"
	"vms/src/common"
	"vms/src/types"

	"github.com/gin-gonic/gin"
)

func checkinHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkins", func(ctx *gin.Context) {
			var body types.CheckInRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkin, err := common.CheckInVisitor(body.TokenID)
			if err != nil {
				log.Printf("Error on check-in for token [%d]: %s\n", body.TokenID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": checkin})
		}).
		GET("/checkins/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			status, err := common.Presence(params.ID)
			if err != nil {
				log.Printf("Error retrieving presence for token [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": status})
		}).
		PUT("/checkins/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkin, err := common.CheckOutVisitor(params.ID)
			if err != nil {
				log.Printf("Error on check-out for token [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": checkin})
		}).
		PUT("/checkins/:id/end", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkin, err := common.EndVisitManually(params.ID)
			if err != nil {
				log.Printf("Error ending visit for token [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": checkin})
		}).
		PUT("/checkins/:id/extend", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ExtendStayRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkin, err := common.ExtendStay(params.ID, body.Minutes)
			if err != nil {
				log.Printf("Error extending stay for token [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": checkin, "expected_checkout": checkin.ExpectedCheckout})
		})
	return g
}
