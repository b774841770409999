package http

import (
	"time"

	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
)

// ListMembersRequest defines query parameters for listing members.
type ListMembersRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Query  string `form:"q"`
}

type RegisterMemberBody struct {
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	CompanyID string `json:"company_id"`
}

type UpdateMemberBody struct {
	FullName  *string `json:"full_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	CompanyID *string `json:"company_id"`
}

// MemberResponse is the shape of member data returned in API responses.
type MemberResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CompanyID *string   `json:"company_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberTag is a brief representation of a member.
type MemberTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewMemberResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		Phone:     m.Phone,
		CompanyID: m.CompanyID,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}
