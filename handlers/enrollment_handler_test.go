package handlers_test

import (
	"testing"

	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TestEnrollFlow(t *testing.T) {
	app, _ := newTestApp(t)
	educator := register(t, app, "edu@example.com", "educator")
	learner := register(t, app, "learner@example.com", "learner")
	id := createCourse(t, app, educator, "Seerah Studies")

	resp, body := doRequest(t, app, "POST", "/api/courses/"+id+"/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, "POST", "/api/courses/"+id+"/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("double enroll: status %d, body %v", resp.StatusCode, body)
	}

	resp, list := doRequestList(t, app, "GET", "/api/learner/courses", learner)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("learner courses: status %d", resp.StatusCode)
	}
	if len(list) != 1 || list[0]["title"] != "Seerah Studies" {
		t.Fatalf("learner courses = %v", list)
	}
	if list[0]["progress"].(float64) != 0 {
		t.Fatalf("fresh enrollment progress = %v, want 0", list[0]["progress"])
	}

	resp, body = doRequest(t, app, "DELETE", "/api/courses/"+id+"/unenroll", learner, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unenroll: status %d, body %v", resp.StatusCode, body)
	}
	if body["unenrolled"] != true {
		t.Fatalf("unenrolled = %v", body["unenrolled"])
	}

	resp, list = doRequestList(t, app, "GET", "/api/learner/courses", learner)
	if resp.StatusCode != fiber.StatusOK || len(list) != 0 {
		t.Fatalf("after unenroll: status %d, got %d courses", resp.StatusCode, len(list))
	}
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	app, _ := newTestApp(t)
	educator := register(t, app, "edu@example.com", "educator")
	learner := register(t, app, "learner@example.com", "learner")

	resp, body := doRequest(t, app, "POST", "/api/courses", educator, fiber.Map{"title": "Hidden Draft"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create: status %d, body %v", resp.StatusCode, body)
	}
	id := jsonID(t, body, "course")

	// Unpublished and nonexistent courses look the same to the learner.
	resp, _ = doRequest(t, app, "POST", "/api/courses/"+id+"/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unpublished enroll: status %d, want 404", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, "POST", "/api/courses/9999/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing course enroll: status %d, want 404", resp.StatusCode)
	}
}

func TestEnrollRequiresLearnerRole(t *testing.T) {
	app, _ := newTestApp(t)
	educator := register(t, app, "edu@example.com", "educator")
	id := createCourse(t, app, educator, "Self Study")

	resp, _ := doRequest(t, app, "POST", "/api/courses/"+id+"/enroll", educator, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("educator enroll: status %d, want 403", resp.StatusCode)
	}
}

func enrollmentID(t *testing.T, db *gorm.DB) string {
	t.Helper()

	var enrollment models.Enrollment
	if err := db.First(&enrollment).Error; err != nil {
		t.Fatalf("load enrollment: %v", err)
	}
	return itoa(enrollment.ID)
}

func TestUpdateProgressClamps(t *testing.T) {
	app, db := newTestApp(t)
	educator := register(t, app, "edu@example.com", "educator")
	learner := register(t, app, "learner@example.com", "learner")
	courseID := createCourse(t, app, educator, "Progress Course")

	resp, body := doRequest(t, app, "POST", "/api/courses/"+courseID+"/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", resp.StatusCode, body)
	}
	id := enrollmentID(t, db)

	cases := []struct {
		payload fiber.Map
		want    int
	}{
		{fiber.Map{"progress": 150}, 100},
		{fiber.Map{"progress": -10}, 0},
		{fiber.Map{"progress": 55}, 55},
	}
	for _, tc := range cases {
		resp, body = doRequest(t, app, "PUT", "/api/enrollments/"+id+"/progress", educator, tc.payload)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("progress %v: status %d, body %v", tc.payload, resp.StatusCode, body)
		}

		var enrollment models.Enrollment
		if err := db.First(&enrollment, id).Error; err != nil {
			t.Fatalf("load enrollment: %v", err)
		}
		if enrollment.Progress != tc.want {
			t.Errorf("progress %v: stored %d, want %d", tc.payload, enrollment.Progress, tc.want)
		}
	}
}

func TestCompletedForcesFullProgress(t *testing.T) {
	app, db := newTestApp(t)
	educator := register(t, app, "edu@example.com", "educator")
	learner := register(t, app, "learner@example.com", "learner")
	courseID := createCourse(t, app, educator, "Completion Course")

	resp, body := doRequest(t, app, "POST", "/api/courses/"+courseID+"/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", resp.StatusCode, body)
	}
	id := enrollmentID(t, db)

	resp, body = doRequest(t, app, "PUT", "/api/enrollments/"+id+"/progress", educator, fiber.Map{"completed": true})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("complete: status %d, body %v", resp.StatusCode, body)
	}

	var enrollment models.Enrollment
	if err := db.First(&enrollment, id).Error; err != nil {
		t.Fatalf("load enrollment: %v", err)
	}
	if !enrollment.Completed || enrollment.Progress != 100 {
		t.Fatalf("completed=%v progress=%d, want true/100", enrollment.Completed, enrollment.Progress)
	}
}

func TestUpdateProgressIsOwnerScoped(t *testing.T) {
	app, db := newTestApp(t)
	educator := register(t, app, "edu@example.com", "educator")
	rival := register(t, app, "rival@example.com", "educator")
	learner := register(t, app, "learner@example.com", "learner")
	courseID := createCourse(t, app, educator, "Guarded Course")

	resp, body := doRequest(t, app, "POST", "/api/courses/"+courseID+"/enroll", learner, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", resp.StatusCode, body)
	}
	id := enrollmentID(t, db)

	resp, _ = doRequest(t, app, "PUT", "/api/enrollments/"+id+"/progress", rival, fiber.Map{"progress": 10})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("rival progress update: status %d, want 403", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, "PUT", "/api/enrollments/9999/progress", rival, fiber.Map{"progress": 10})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing enrollment: status %d, want 404", resp.StatusCode)
	}
}
