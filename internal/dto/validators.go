package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	"github.com/23050617sfy/SE-GPMS/internal/workflow"
)

// 自定义校验标签
const (
	notBlankTag      = "notblank"
	reviewResultTag  = "review_result"
	thesisStageTag   = "thesis_stage"
	workflowStageTag = "workflow_stage"
)

var translator ut.Translator

// RegisterValidators 在 validator 实例上注册自定义标签与中文错误信息
// 每个 validator 实例调用一次，启动阶段完成
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	validations := map[string]validator.Func{
		notBlankTag:      notBlank,
		reviewResultTag:  validReviewResult,
		thesisStageTag:   validThesisStage,
		workflowStageTag: validWorkflowStage,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	zhLocale := zh.New()
	trans, _ := ut.New(zhLocale, zhLocale).GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return err
	}
	for tag, msg := range customMessages {
		msg := msg
		err := v.RegisterTranslation(tag, trans,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string { return fe.Field() + msg })
		if err != nil {
			return err
		}
	}
	translator = trans
	return nil
}

var customMessages = map[string]string{
	notBlankTag:      "不能为空",
	reviewResultTag:  "必须是 pass、fail 或 revise",
	thesisStageTag:   "必须是 first_review、second_review 或 final_submission",
	workflowStageTag: "不是有效的流程阶段",
}

// TranslateError 将绑定校验错误转换为可读的中文信息
// 非校验错误（如 JSON 语法错误）返回 fallback
func TranslateError(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if translator == nil || !errors.As(err, &verrs) {
		return fallback
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return strings.Join(msgs, "; ")
}

func notBlank(fl validator.FieldLevel) bool {
	switch f := fl.Field(); f.Kind() {
	case reflect.String:
		return strings.TrimSpace(f.String()) != ""
	case reflect.Ptr:
		if f.IsNil() {
			return true
		}
		return f.Elem().Kind() != reflect.String || strings.TrimSpace(f.Elem().String()) != ""
	}
	return true
}

func validReviewResult(fl validator.FieldLevel) bool {
	return workflow.Result(fl.Field().String()).Valid()
}

func validThesisStage(fl validator.FieldLevel) bool {
	_, ok := workflow.StageFromThesisStage(fl.Field().String())
	return ok
}

func validWorkflowStage(fl validator.FieldLevel) bool {
	return workflow.Stage(fl.Field().String()).Valid()
}
