package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ja" // 日本語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja" // 日本語翻訳
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"title":            "タイトル",
	"body":             "本文",
	"priority":         "優先度",
	"status":           "完了状態",
	"completionStatus": "完了状態",
	"tags":             "タグ",
	"nickname":         "ニックネーム",
	"avatarUrl":        "アバターURL",
	"code":             "ログインコード",
	"userType":         "ユーザー種別",
}

func translateFieldName(fe validator.FieldError) string {
	if name, ok := fieldNameTranslations[fe.Field()]; ok {
		return name
	}
	return fe.Field()
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// registerTranslation はフィールド名を日本語化したメッセージを登録します。
	// withParam が true のときは {1} にタグのパラメータを渡す。
	registerTranslation := func(tag, msg string, withParam bool) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			var t string
			if withParam {
				t, _ = ut.T(tag, translateFieldName(fe), fe.Param())
			} else {
				t, _ = ut.T(tag, translateFieldName(fe))
			}
			return t
		})
	}

	registerTranslation("required", "{0}は必須項目です。", false)
	registerTranslation("min", "{0}は{1}文字以上で入力してください。", true)
	registerTranslation("max", "{0}は{1}文字以下で入力してください。", true)
	registerTranslation("oneof", "{0}は[{1}]のいずれかで指定してください。", true)
}
