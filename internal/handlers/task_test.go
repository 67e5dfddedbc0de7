package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/testutil"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	env     *handlerEnv
	router  *gin.Engine
	owner   *models.User
	member  *models.User
	outside *models.User
	project *models.Project
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	t := suite.T()
	suite.env = newHandlerEnv(t)

	handler := NewTaskHandler(suite.env.tasks)
	r := suite.env.router()
	tasks := r.Group("/api/tasks", middleware.RequireAuth(suite.env.identity))
	tasks.GET("", validation.Query[dto.ListTasksQuery](), handler.ListTasks)
	tasks.POST("", validation.Body[dto.CreateTaskRequest](), handler.CreateTask)
	task := tasks.Group("/:taskId", validation.URI[dto.TaskURI](), middleware.RequireTaskAccess(suite.env.tasks))
	task.GET("", handler.GetTask)
	task.PATCH("", validation.Body[dto.UpdateTaskRequest](), handler.UpdateTask)
	task.DELETE("", handler.DeleteTask)
	task.POST("/move", validation.Body[dto.MoveTaskRequest](), handler.MoveTask)
	suite.router = r

	db := suite.env.db
	suite.owner = testutil.CreateUser(t, db, testutil.Email("owner"))
	suite.member = testutil.CreateUser(t, db, testutil.Email("member"))
	suite.outside = testutil.CreateUser(t, db, testutil.Email("outside"))
	suite.project = testutil.CreateProject(t, db, "Board", suite.owner)
	testutil.AddMember(t, db, suite.project, suite.member, models.ProjectRoleMember)
}

func (suite *TaskHandlerTestSuite) do(user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	req := request{method: method, path: path, body: body}
	if user != nil {
		req.token = suite.env.tokenFor(suite.T(), user)
	}
	return perform(suite.T(), suite.router, req)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Write docs", suite.project, suite.owner)

	w := suite.do(suite.member, http.MethodGet, "/api/tasks?project_id="+suite.project.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	response := decode[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal(task.Title, response.Tasks[0].Title)
	suite.Equal(int64(1), response.Pagination.Total)
	suite.Equal(1, response.Pagination.Page)
	suite.Equal(10, response.Pagination.Limit)
}

func (suite *TaskHandlerTestSuite) TestListTasks_StatusFilter() {
	testutil.CreateTask(suite.T(), suite.env.db, "Open", suite.project, suite.owner)
	testutil.CreateTask(suite.T(), suite.env.db, "Reviewing", suite.project, suite.owner, func(task *models.Task) {
		task.Status = models.TaskStatusInReview
	})

	w := suite.do(suite.owner, http.MethodGet, "/api/tasks?status=IN_REVIEW&project_id="+suite.project.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	response := decode[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("Reviewing", response.Tasks[0].Title)

	w = suite.do(suite.owner, http.MethodGet, "/api/tasks?status=ARCHIVED&project_id="+suite.project.ID, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := suite.do(nil, http.MethodGet, "/api/tasks?project_id="+suite.project.ID, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_NotProjectMember() {
	w := suite.do(suite.outside, http.MethodGet, "/api/tasks?project_id="+suite.project.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Inspect", suite.project, suite.owner)

	w := suite.do(suite.member, http.MethodGet, "/api/tasks/"+task.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	response := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal(task.ID, response.ID)
	suite.Equal(models.TaskStatusTodo, response.Status)
	suite.Require().NotNil(response.Creator)
	suite.Equal(suite.owner.ID, response.Creator.ID)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundAndMalformedID() {
	w := suite.do(suite.owner, http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(suite.owner, http.MethodGet, "/api/tasks/42", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotProjectMember() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Private", suite.project, suite.owner)

	w := suite.do(suite.outside, http.MethodGet, "/api/tasks/"+task.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	w := suite.do(suite.member, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":       "Ship release",
		"description": "Tag and publish",
		"difficulty":  3,
		"project_id":  suite.project.ID,
		"assignee_id": suite.owner.ID,
		"tags":        []string{"release"},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	response := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("Ship release", response.Title)
	suite.Equal(3, response.Difficulty)
	suite.Equal(models.TaskStatusTodo, response.Status)
	suite.Equal(suite.member.ID, response.CreatorID)
	suite.Require().NotNil(response.AssigneeID)
	suite.Equal(suite.owner.ID, *response.AssigneeID)
	suite.Equal([]string{"release"}, response.Tags)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	w := suite.do(suite.owner, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":      "   ",
		"difficulty": 11,
		"project_id": suite.project.ID,
	})
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	details, ok := decode[apierrors.APIError](suite.T(), w).Details.(map[string]interface{})
	suite.Require().True(ok)
	suite.Contains(details, "title")
	suite.Contains(details, "difficulty")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_NotProjectMember() {
	w := suite.do(suite.outside, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":      "Sneaky",
		"project_id": suite.project.ID,
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Draft", suite.project, suite.owner)

	w := suite.do(suite.member, http.MethodPatch, "/api/tasks/"+task.ID, map[string]interface{}{
		"title":       "Final",
		"difficulty":  4,
		"assignee_id": suite.member.ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	response := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("Final", response.Title)
	suite.Equal(4, response.Difficulty)
	suite.Require().NotNil(response.AssigneeID)
	suite.Equal(suite.member.ID, *response.AssigneeID)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearDueDate() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Dated", suite.project, suite.owner)

	w := suite.do(suite.owner, http.MethodPatch, "/api/tasks/"+task.ID, map[string]interface{}{
		"due_date": "2030-01-02T15:04:05Z",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().NotNil(decode[dto.TaskDTO](suite.T(), w).DueDate)

	w = suite.do(suite.owner, http.MethodPatch, "/api/tasks/"+task.ID, map[string]interface{}{
		"clear_due_date": true,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Nil(decode[dto.TaskDTO](suite.T(), w).DueDate)
}

func (suite *TaskHandlerTestSuite) TestMoveTask_AnyDirection() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Flow", suite.project, suite.owner)

	for _, status := range []models.TaskStatus{models.TaskStatusDone, models.TaskStatusTodo, models.TaskStatusInReview} {
		w := suite.do(suite.member, http.MethodPost, "/api/tasks/"+task.ID+"/move", map[string]string{"status": string(status)})
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		suite.Equal(status, decode[dto.TaskDTO](suite.T(), w).Status)
	}

	var creator models.User
	suite.Require().NoError(suite.env.db.First(&creator, "id = ?", suite.owner.ID).Error)
	suite.Equal(int64(10), creator.Points)
}

func (suite *TaskHandlerTestSuite) TestMoveTask_InvalidStatus() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Stuck", suite.project, suite.owner)

	for _, body := range []map[string]string{{"status": "SHIPPED"}, {"status": "done"}, {}} {
		w := suite.do(suite.owner, http.MethodPost, "/api/tasks/"+task.ID+"/move", body)
		suite.Equal(http.StatusBadRequest, w.Code, body)
	}

	var stored models.Task
	suite.Require().NoError(suite.env.db.First(&stored, "id = ?", task.ID).Error)
	suite.Equal(models.TaskStatusTodo, stored.Status)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Temporary", suite.project, suite.member)

	w := suite.do(suite.member, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(suite.member, http.MethodGet, "/api/tasks/"+task.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_NotCreator() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Owned", suite.project, suite.owner)

	w := suite.do(suite.member, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
