package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register a service client (kitchen display, delivery app) for the client_credentials grant
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body models.ClientRequest true "Client details"
// @Success 201 {object} services.CreatedClient "The secret is returned only once"
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := cc.clientService.CreateClient(c.Request.Context(), middleware.CurrentPrincipal(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Clients owned by the caller
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.ListClients(c.Request.Context(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete a client owned by the caller
// @Tags OAuth2 Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 204 "Client deleted"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), middleware.CurrentPrincipal(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
