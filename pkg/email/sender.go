package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	textTemplate "text/template"
)

// TemplatesDir is where template files are looked up.
var TemplatesDir = "./templates/"

type SendEmailInput struct {
	To       string
	Subject  string
	Body     string
	TextBody string
}

type Sender interface {
	Send(input SendEmailInput) error
}

func (e *SendEmailInput) GenerateBodyFromHTML(templateFileName string, data interface{}) error {
	t, err := template.ParseFiles(filepath.Join(TemplatesDir, templateFileName))
	if err != nil {
		return fmt.Errorf("parse file failed: %w", err)
	}

	buf := new(bytes.Buffer)
	if err = t.Execute(buf, data); err != nil {
		return fmt.Errorf("email data injection failed: %w", err)
	}

	e.Body = buf.String()

	return nil
}

// GenerateTextBody fills the plain text alternative.
func (e *SendEmailInput) GenerateTextBody(templateFileName string, data interface{}) error {
	t, err := textTemplate.ParseFiles(filepath.Join(TemplatesDir, templateFileName))
	if err != nil {
		return fmt.Errorf("parse file failed: %w", err)
	}

	buf := new(bytes.Buffer)
	if err = t.Execute(buf, data); err != nil {
		return fmt.Errorf("email data injection failed: %w", err)
	}

	e.TextBody = buf.String()

	return nil
}

func (e *SendEmailInput) Validate() error {
	if e.To == "" {
		return errors.New("empty to")
	}

	if e.Subject == "" || e.Body == "" {
		return errors.New("empty subject/body")
	}

	if !IsEmailValid(e.To) {
		return errors.New("invalid to email")
	}

	return nil
}
