package model

import "testing"

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"teacher", "Teacher", "  ADMIN  ", "class_teacher", "other_staff"} {
		if _, ok := ParseRole(raw); !ok {
			t.Errorf("ParseRole(%q) rejected", raw)
		}
	}
	for _, raw := range []string{"", "superuser", "teach er", "admin;"} {
		if _, ok := ParseRole(raw); ok {
			t.Errorf("ParseRole(%q) accepted", raw)
		}
	}

	role, _ := ParseRole(" Principal ")
	if role != RolePrincipal {
		t.Errorf("ParseRole normalized to %q", role)
	}
}

func TestIsStaffRole(t *testing.T) {
	staff := []Role{RolePrincipal, RoleClassTeacher, RoleTeacher, RoleAccountant, RoleAdmin, RoleOtherStaff}
	for _, role := range staff {
		if !role.IsStaffRole() {
			t.Errorf("%s should be staff", role)
		}
	}
	for _, role := range []Role{RoleParent, RoleStudent} {
		if role.IsStaffRole() {
			t.Errorf("%s should not be staff", role)
		}
	}
}

func TestParseAttendanceStatus(t *testing.T) {
	for _, raw := range []string{"present", "Absent", " LATE ", "excused"} {
		if _, ok := ParseAttendanceStatus(raw); !ok {
			t.Errorf("ParseAttendanceStatus(%q) rejected", raw)
		}
	}
	if _, ok := ParseAttendanceStatus("sick"); ok {
		t.Error("unknown status accepted")
	}
}
