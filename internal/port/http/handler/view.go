package handler

import (
	"time"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

// userResponse is the API view of a user. Secrets never leave the service
// boundary regardless of what the session cache carries.
func userResponse(u *entity.User) map[string]interface{} {
	courses := make([]map[string]string, len(u.Courses))
	for i, c := range u.Courses {
		courses[i] = map[string]string{"courseId": c.CourseID}
	}

	out := map[string]interface{}{
		"_id":        u.ID.Hex(),
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"isVerified": u.IsVerified,
		"courses":    courses,
		"createdAt":  u.CreatedAt.Format(time.RFC3339),
		"updatedAt":  u.UpdatedAt.Format(time.RFC3339),
	}
	if u.Avatar != nil {
		out["avatar"] = u.Avatar
	}
	return out
}
