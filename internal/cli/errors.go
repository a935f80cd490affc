package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/context"
	"github.com/user/peppy/internal/model"
)

// Error codes for structured error responses
const (
	ErrCodeConfig          = "CONFIG_ERROR"
	ErrCodeSampleNotFound  = "SAMPLE_NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNoProjectConfig = "NO_PROJECT_CONFIG"
	ErrCodeUnknownCategory = "UNKNOWN_CATEGORY"
	ErrCodeUnknownCompute  = "UNKNOWN_COMPUTE_PACKAGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// JSONError represents a structured error response for --json output
type JSONError struct {
	Error   bool                   `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ExitWithError outputs an error message and exits.
// If --json flag is set, outputs structured JSON error to stdout.
// Otherwise outputs plain text to stderr.
func ExitWithError(code int, errCode, message string, details map[string]interface{}) {
	if GetJSONOutput() {
		errResp := JSONError{
			Error:   true,
			Code:    errCode,
			Message: message,
			Details: details,
		}
		data, _ := json.Marshal(errResp)
		fmt.Println(string(data))
	} else {
		fmt.Fprintln(os.Stderr, "Error:", message)
	}
	Exit(code)
}

// classify maps an error to an exit code, error code and details.
func classify(err error) (int, string, map[string]interface{}) {
	var (
		notFound   *model.SampleNotFoundError
		section    *model.MissingConfigSectionError
		metadata   *model.MissingMetadataError
		sheet      *model.MissingSampleSheetError
		readType   *model.InvalidReadTypeError
		dataSource *model.UndefinedDataSourceError
		sampleName *model.InvalidSampleNameError
		duplicate  *model.DuplicateSampleError
		flag       *model.InvalidFlagError
		computePkg *model.UnknownComputePackageError
	)

	switch {
	case errors.Is(err, context.ErrNoProjectConfig):
		return 1, ErrCodeNoProjectConfig, nil
	case errors.Is(err, constants.ErrUnknownCategory):
		return 2, ErrCodeUnknownCategory, map[string]interface{}{"categories": constants.Categories()}
	case errors.As(err, &notFound):
		return 1, ErrCodeSampleNotFound, map[string]interface{}{"sample": notFound.Name}
	case errors.As(err, &section):
		return 1, ErrCodeConfig, map[string]interface{}{"section": section.Section}
	case errors.As(err, &metadata):
		return 1, ErrCodeConfig, map[string]interface{}{"key": metadata.Key}
	case errors.As(err, &sheet):
		return 1, ErrCodeConfig, map[string]interface{}{"path": sheet.Path}
	case errors.As(err, &readType):
		return 2, ErrCodeValidation, map[string]interface{}{"sample": readType.Sample, "read_type": readType.ReadType}
	case errors.As(err, &dataSource):
		return 2, ErrCodeValidation, map[string]interface{}{"sample": dataSource.Sample, "source": dataSource.Source}
	case errors.As(err, &sampleName):
		return 2, ErrCodeValidation, map[string]interface{}{"sample": sampleName.Name}
	case errors.As(err, &duplicate):
		return 2, ErrCodeValidation, map[string]interface{}{"sample": duplicate.Name}
	case errors.As(err, &flag):
		return 2, ErrCodeValidation, map[string]interface{}{"flag": flag.Flag}
	case errors.As(err, &computePkg):
		return 1, ErrCodeUnknownCompute, map[string]interface{}{"package": computePkg.Package}
	case model.IsPeppyError(err):
		return 1, ErrCodeValidation, nil
	}
	return 1, ErrCodeInternal, nil
}

// ReportError prints err in the selected output format and exits with the
// code for its kind.
func ReportError(err error) {
	code, errCode, details := classify(err)
	ExitWithError(code, errCode, err.Error(), details)
}
