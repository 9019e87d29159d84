package main

import (
	"errors"
	"log"
	"net/http"
	"vms/src/common"
	"vms/src/db"
	"vms/src/models"
	"vms/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func tokenHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tokens", func(ctx *gin.Context) {
			var body types.IssueTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, err := common.IssueToken(&body)
			if err != nil {
				log.Printf("Error issuing token for appointment [%d]: %s\n", body.AppointmentID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": token})
		}).
		GET("/tokens/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var token models.Token
			db := db.GetDb()
			if err := db.
				Where(&models.Token{ID: params.ID}).
				Preload("Appointment").
				Preload("Appointment.Location").
				First(&token).
				Error; err != nil {
				log.Printf("Error retrieving Token [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": token})
		}).
		PUT("/tokens/:id/deactivate", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, err := common.DeactivateToken(params.ID)
			if err != nil {
				log.Printf("Error deactivating Token [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": token})
		})
	return g
}
