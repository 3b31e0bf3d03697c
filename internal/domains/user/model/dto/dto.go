package dto

import (
	"time"

	"stagehand/internal/domains/user/model"
	"stagehand/shared"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"
	"stagehand/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string  `json:"email"               validate:"required,email"`
	Password string  `json:"password"            validate:"required,min=8"`
	Role     string  `json:"role"                validate:"omitempty,oneof=admin director staff"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
}

// ToModel defaults the role to staff.
func (r *CreateUserRequest) ToModel(user, hashedPassword string, now time.Time) model.User {
	role := r.Role
	if role == "" {
		role = constant.RoleStaff
	}

	return model.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		Role:     role,
		FullName: r.FullName,
		Active:   true,
		Metadata: gModel.NewMetadata(user, now),
	}
}

type UpdateUserRequest struct {
	Role     string  `db:"role"      json:"role,omitempty"      validate:"omitempty,oneof=admin director staff"`
	FullName *string `db:"full_name" json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Active   *bool   `db:"active"    json:"active,omitempty"`
}

func (u *UpdateUserRequest) IsEmpty() bool {
	return u.Role == "" && u.FullName == nil && u.Active == nil
}

// RevokesAdmin reports whether applying the request to an active admin would leave it unable to
// manage users.
func (u UpdateUserRequest) RevokesAdmin() bool {
	return (u.Role != "" && u.Role != constant.RoleAdmin) || (u.Active != nil && !*u.Active)
}

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	FullName  *string `json:"full_name,omitempty"`
	LastLogin *string `json:"last_login,omitempty"`
	Active    bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(mod model.User) {
	r.ID = mod.ID
	r.Email = mod.Email
	r.Role = mod.Role
	r.FullName = mod.FullName
	r.Active = mod.Active
	r.Metadata.FromModel(mod.Metadata)

	if mod.LastLogin != nil {
		lastLogin := timezone.FormatInstant(*mod.LastLogin)
		r.LastLogin = &lastLogin
	}
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

// EmailFilter matches the account registered under email.
func EmailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    model.TableName,
			},
		},
	}
}
