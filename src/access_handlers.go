package main

import (
	"log"
	"net/http"
	"vms/src/common"
	"vms/src/db"
	"vms/src/models"
	"vms/src/types"
	"vms/src/utils"

	"github.com/gin-gonic/gin"
)

func accessHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/access/check", func(ctx *gin.Context) {
			var body types.AccessCheckRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			decision, err := common.CheckAccess(body.TokenID, body.LocationID)
			if err != nil {
				log.Printf("Error on access check for token [%d] at location [%d]: %s\n", body.TokenID, body.LocationID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": decision})
		}).
		GET("/access/logs", func(ctx *gin.Context) {
			pagination, err := utils.ParsePagination(ctx)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var records []models.AccessRecord
			db := db.GetDb()
			if err := db.
				Model(&models.AccessRecord{}).
				Preload("Location").
				Order("created_at desc").
				Limit(pagination.Limit).
				Offset(pagination.Offset()).
				Find(&records).
				Error; err != nil {
				log.Printf("Error retrieving access logs: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": records, "count": len(records)})
		}).
		GET("/access/restricted", func(ctx *gin.Context) {
			pagination, err := utils.ParsePagination(ctx)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var restrictions []models.VisitorRestriction
			db := db.GetDb()
			if err := db.
				Model(&models.VisitorRestriction{}).
				Preload("Attempt").
				Preload("Token").
				Order("created_at desc").
				Limit(pagination.Limit).
				Offset(pagination.Offset()).
				Find(&restrictions).
				Error; err != nil {
				log.Printf("Error retrieving restricted attempts: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": restrictions, "count": len(restrictions)})
		})
	return g
}
