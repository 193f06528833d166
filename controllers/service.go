// controllers/service.go
package controllers

import (
	"net/http"

	"reservation-system/services"

	"github.com/gin-gonic/gin"
)

// ServiceInput defines the expected JSON structure for creating or updating a service.
// Price and duration may be sent as strings or numbers.
type ServiceInput struct {
	Name        *string      `json:"name" binding:"omitempty,max=100"`
	Description *string      `json:"description"`
	Price       *looseString `json:"price" binding:"omitempty,price"`
	Duration    *looseString `json:"duration" binding:"omitempty,duration"`
}

// ServiceController serves the catalog pages and the /api/services resource
type ServiceController struct {
	Catalog *services.CatalogService
}

// ListPage is the home page.
func (sc *ServiceController) ListPage(c *gin.Context) {
	list, err := sc.Catalog.ListServices(c.Request.Context())
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "service_list.html", gin.H{"Services": list})
}

func (sc *ServiceController) DetailPage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		renderPageError(c, err)
		return
	}
	service, err := sc.Catalog.GetService(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "service_detail.html", gin.H{"Service": service})
}

// GetServices lists every service
func (sc *ServiceController) GetServices(c *gin.Context) {
	list, err := sc.Catalog.ListServices(c.Request.Context())
	if err != nil {
		respondWithAppError(c, err)
		return
	}

	out := make([]ServiceResponse, 0, len(list))
	for i := range list {
		out = append(out, newServiceResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetService retrieves a specific service by ID
func (sc *ServiceController) GetService(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	service, err := sc.Catalog.GetService(c.Request.Context(), id)
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newServiceResponse(service))
}

// CreateService creates a new service
func (sc *ServiceController) CreateService(c *gin.Context) {
	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithAppError(c, bindError(err))
		return
	}

	service, err := sc.Catalog.CreateService(c.Request.Context(), services.ServiceInput{
		Name:        deref(input.Name),
		Description: deref(input.Description),
		Price:       deref(input.Price.value()),
		Duration:    deref(input.Duration.value()),
	})
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newServiceResponse(service))
}

// ReplaceService handles PUT: every field except description must be present.
func (sc *ServiceController) ReplaceService(c *gin.Context) {
	sc.updateService(c, false)
}

// PatchService handles PATCH: only supplied fields change.
func (sc *ServiceController) PatchService(c *gin.Context) {
	sc.updateService(c, true)
}

func (sc *ServiceController) updateService(c *gin.Context, partial bool) {
	id, err := paramID(c, "id")
	if err != nil {
		respondWithAppError(c, err)
		return
	}

	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithAppError(c, bindError(err))
		return
	}

	patch := services.ServicePatch{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.value(),
		Duration:    input.Duration.value(),
	}
	if !partial {
		patch.Name = orEmpty(patch.Name)
		patch.Description = orEmpty(patch.Description)
		patch.Price = orEmpty(patch.Price)
		patch.Duration = orEmpty(patch.Duration)
	}

	service, err := sc.Catalog.UpdateService(c.Request.Context(), id, patch)
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newServiceResponse(service))
}

// DeleteService removes a service along with its reservations
func (sc *ServiceController) DeleteService(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	if err := sc.Catalog.DeleteService(c.Request.Context(), id); err != nil {
		respondWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
