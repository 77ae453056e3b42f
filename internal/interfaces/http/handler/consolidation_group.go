package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
)

// ConsolidationGroupHandler handles consolidation group API endpoints
type ConsolidationGroupHandler struct {
	BaseHandler
	groupService *consolidationapp.GroupService
}

// NewConsolidationGroupHandler creates a new ConsolidationGroupHandler
func NewConsolidationGroupHandler(groupService *consolidationapp.GroupService) *ConsolidationGroupHandler {
	return &ConsolidationGroupHandler{
		groupService: groupService,
	}
}

// Create godoc
// @ID           createConsolidationGroup
// @Summary      Create a consolidation group
// @Description  Create a new consolidation group with a reporting currency and default method
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body consolidationapp.CreateGroupRequest true "Group creation request"
// @Success      201 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /consolidation/groups [post]
func (h *ConsolidationGroupHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req consolidationapp.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, group)
}

// GetByID godoc
// @ID           getConsolidationGroupById
// @Summary      Get consolidation group by ID
// @Tags         groups
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id} [get]
func (h *ConsolidationGroupHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	group, err := h.groupService.GetByID(c.Request.Context(), tenantID, groupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}

// List godoc
// @ID           listConsolidationGroups
// @Summary      List consolidation groups
// @Description  Retrieve a paginated list of consolidation groups with optional filtering
// @Tags         groups
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        search query string false "Search term (group name)"
// @Param        is_active query bool false "Filter by active state"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(200)
// @Success      200 {object} APIResponse[[]consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /consolidation/groups [get]
func (h *ConsolidationGroupHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter consolidationapp.GroupListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	groups, err := h.groupService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, groups.Items, groups.Total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateConsolidationGroup
// @Summary      Rename a consolidation group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body consolidationapp.UpdateGroupRequest true "Group update request"
// @Success      200 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /consolidation/groups/{id} [put]
func (h *ConsolidationGroupHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req consolidationapp.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.Update(c.Request.Context(), tenantID, groupID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}

// Deactivate godoc
// @ID           deactivateConsolidationGroup
// @Summary      Deactivate a consolidation group
// @Description  Deactivated groups keep their run history but reject new runs
// @Tags         groups
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/deactivate [post]
func (h *ConsolidationGroupHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	group, err := h.groupService.Deactivate(c.Request.Context(), tenantID, groupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}

// Delete godoc
// @ID           deleteConsolidationGroup
// @Summary      Delete a consolidation group
// @Description  Groups with completed runs cannot be deleted, only deactivated
// @Tags         groups
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /consolidation/groups/{id} [delete]
func (h *ConsolidationGroupHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), tenantID, groupID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddMember godoc
// @ID           addConsolidationGroupMember
// @Summary      Add a member company to a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body consolidationapp.AddMemberRequest true "Member details"
// @Success      200 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/members [post]
func (h *ConsolidationGroupHandler) AddMember(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req consolidationapp.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.AddMember(c.Request.Context(), tenantID, groupID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}

// UpdateMember godoc
// @ID           updateConsolidationGroupMember
// @Summary      Update a member's ownership or method
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        companyId path string true "Company ID" format(uuid)
// @Param        request body consolidationapp.UpdateMemberRequest true "Member update request"
// @Success      200 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/members/{companyId} [put]
func (h *ConsolidationGroupHandler) UpdateMember(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	var req consolidationapp.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.UpdateMember(c.Request.Context(), tenantID, groupID, companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}

// RemoveMember godoc
// @ID           removeConsolidationGroupMember
// @Summary      Remove a member company from a group
// @Tags         groups
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        companyId path string true "Company ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/members/{companyId} [delete]
func (h *ConsolidationGroupHandler) RemoveMember(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	group, err := h.groupService.RemoveMember(c.Request.Context(), tenantID, groupID, companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}
