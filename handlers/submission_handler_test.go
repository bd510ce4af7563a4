package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

// submissionFixture wires up the common grading scenario: an enrolled
// learner with one submission against an assessment worth 50 marks.
type submissionFixture struct {
	educator     string
	rival        string
	learner      string
	stranger     string
	courseID     string
	assessmentID string
	submissionID string
}

func newSubmissionFixture(t *testing.T, app *fiber.App) *submissionFixture {
	t.Helper()

	f := &submissionFixture{
		educator: register(t, app, "edu@example.com", "educator"),
		rival:    register(t, app, "rival@example.com", "educator"),
		learner:  register(t, app, "learner@example.com", "learner"),
		stranger: register(t, app, "stranger@example.com", "learner"),
	}
	f.courseID = createCourse(t, app, f.educator, "Graded Course")

	resp, body := doRequest(t, app, "POST", "/api/courses/"+f.courseID+"/assessments", f.educator, fiber.Map{
		"title":       "Midterm",
		"description": "Chapters 1 to 4",
		"total_marks": 50,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create assessment: status %d, body %v", resp.StatusCode, body)
	}
	f.assessmentID = jsonID(t, body, "assessment")

	resp, body = doRequest(t, app, "POST", "/api/courses/"+f.courseID+"/enroll", f.learner, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, "POST", "/api/assessments/"+f.assessmentID+"/submit", f.learner, fiber.Map{
		"submission_url": "http://localhost:8080/uploads/submissions/answer.pdf",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("submit: status %d, body %v", resp.StatusCode, body)
	}
	id, ok := body["submission_id"].(float64)
	if !ok {
		t.Fatalf("no submission_id in %v", body)
	}
	f.submissionID = itoa(uint(id))

	return f
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, body := doRequest(t, app, "POST", "/api/assessments/"+f.assessmentID+"/submit", f.stranger, fiber.Map{
		"submission_url": "http://x/late.pdf",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("unenrolled submit: status %d, body %v", resp.StatusCode, body)
	}

	resp, _ = doRequest(t, app, "POST", "/api/assessments/9999/submit", f.learner, fiber.Map{
		"submission_url": "http://x/ghost.pdf",
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing assessment submit: status %d, want 404", resp.StatusCode)
	}
}

func TestGradeSubmission(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, body := doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID, f.educator, fiber.Map{
		"marks":    42,
		"feedback": "Good work",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("grade: status %d, body %v", resp.StatusCode, body)
	}

	resp, list := doRequestList(t, app, "GET", "/api/learner/submissions", f.learner)
	if resp.StatusCode != fiber.StatusOK || len(list) != 1 {
		t.Fatalf("learner submissions: status %d, got %d", resp.StatusCode, len(list))
	}
	if list[0]["marks"].(float64) != 42 {
		t.Fatalf("marks = %v, want 42", list[0]["marks"])
	}
	if list[0]["feedback"] != "Good work" {
		t.Fatalf("feedback = %v", list[0]["feedback"])
	}

	// Regrading overwrites; last write wins.
	resp, body = doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID, f.educator, fiber.Map{"marks": 50})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("regrade: status %d, body %v", resp.StatusCode, body)
	}
}

func TestGradeMarksBounds(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	for _, marks := range []int{-1, 51, 1000} {
		resp, body := doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID, f.educator, fiber.Map{"marks": marks})
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("marks %d: status %d, body %v, want 400", marks, resp.StatusCode, body)
		}
	}

	// Both ends of the range are valid.
	for _, marks := range []int{0, 50} {
		resp, body := doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID, f.educator, fiber.Map{"marks": marks})
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("marks %d: status %d, body %v, want 200", marks, resp.StatusCode, body)
		}
	}
}

func TestGradeIsOwnerScoped(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, body := doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID, f.rival, fiber.Map{"marks": 10})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("rival grade: status %d, body %v", resp.StatusCode, body)
	}

	resp, _ = doRequest(t, app, "PUT", "/api/submissions/9999", f.rival, fiber.Map{"marks": 10})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing submission grade: status %d, want 404", resp.StatusCode)
	}
}

func TestEditSubmission(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, body := doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID+"/edit", f.learner, fiber.Map{
		"submission_url": "http://x/revised.pdf",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("edit: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID+"/edit", f.stranger, fiber.Map{
		"submission_url": "http://x/hijack.pdf",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("stranger edit: status %d, body %v", resp.StatusCode, body)
	}
}

func TestEditAfterGradingConflicts(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, body := doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID, f.educator, fiber.Map{"marks": 30})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("grade: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, "PUT", "/api/submissions/"+f.submissionID+"/edit", f.learner, fiber.Map{
		"submission_url": "http://x/too-late.pdf",
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("edit after grade: status %d, body %v", resp.StatusCode, body)
	}
}

func TestDeleteSubmission(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, body := doRequest(t, app, "DELETE", "/api/submissions/"+f.submissionID, f.stranger, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("stranger delete: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, "DELETE", "/api/submissions/"+f.submissionID, f.learner, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete: status %d, body %v", resp.StatusCode, body)
	}
	if body["deleted"] != true {
		t.Fatalf("deleted = %v", body["deleted"])
	}

	resp, list := doRequestList(t, app, "GET", "/api/learner/submissions", f.learner)
	if resp.StatusCode != fiber.StatusOK || len(list) != 0 {
		t.Fatalf("after delete: status %d, got %d submissions", resp.StatusCode, len(list))
	}
}

func TestListSubmissionsForEducator(t *testing.T) {
	app, _ := newTestApp(t)
	f := newSubmissionFixture(t, app)

	resp, list := doRequestList(t, app, "GET", "/api/assessments/"+f.assessmentID+"/submissions", f.educator)
	if resp.StatusCode != fiber.StatusOK || len(list) != 1 {
		t.Fatalf("list submissions: status %d, got %d", resp.StatusCode, len(list))
	}
	if list[0]["student_name"] != "Test learner" {
		t.Fatalf("student_name = %v", list[0]["student_name"])
	}

	resp, _ = doRequestList(t, app, "GET", "/api/assessments/"+f.assessmentID+"/submissions", f.rival)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("rival list: status %d, want 403", resp.StatusCode)
	}
}
