package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/service/dao"
)

func TestMatches(t *testing.T) {
	fields := map[string]string{dao.TaskIDParam: "t1", dao.StatusParam: "Pending"}
	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no parameters", expect: true},
		{description: "single match", parameters: []*dao.Parameter{dao.NewParameter(dao.TaskIDParam, "t1")}, expect: true},
		{description: "single mismatch", parameters: []*dao.Parameter{dao.NewParameter(dao.TaskIDParam, "t2")}, expect: false},
		{description: "any of", parameters: []*dao.Parameter{dao.NewParameter(dao.StatusParam, "Completed", "Pending")}, expect: true},
		{description: "all required", parameters: []*dao.Parameter{dao.NewParameter(dao.TaskIDParam, "t1"), dao.NewParameter(dao.StatusParam, "Failed")}, expect: false},
		{description: "unknown field", parameters: []*dao.Parameter{dao.NewParameter("Other", "x")}, expect: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, Matches(fields, testCase.parameters), testCase.description)
	}
}
