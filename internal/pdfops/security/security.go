// Package security encrypts, decrypts, and permission-protects PDFs, and
// strips identifying metadata.
package security

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// Result reports a security operation.
type Result struct {
	OutputPath   string   `json:"output_path"`
	Restrictions []string `json:"restrictions,omitempty"`
	Success      bool     `json:"success"`
}

// PasswordError indicates a missing, short, or wrong password.
type PasswordError struct {
	Reason string
}

func (e *PasswordError) Error() string { return e.Reason }

func validatePassword(password string) error {
	if len(password) < 4 {
		return &PasswordError{Reason: "password must be at least 4 characters"}
	}
	return nil
}

// Encrypt writes an AES-encrypted copy of input, using password as both
// user and owner password.
func Encrypt(input, output, password string, logger *logrus.Logger) (*Result, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	conf := relaxedConf()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.EncryptFile(input, output, conf); err != nil {
		return nil, fmt.Errorf("encrypting %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output}).Debug("Encrypted document")
	return &Result{OutputPath: output, Success: true}, nil
}

// Decrypt writes a decrypted copy of input. The password must open the
// document.
func Decrypt(input, output, password string, logger *logrus.Logger) (*Result, error) {
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	conf := relaxedConf()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.DecryptFile(input, output, conf); err != nil {
		return nil, &PasswordError{Reason: fmt.Sprintf("decrypting %s: wrong password or document not encrypted: %v", input, err)}
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output}).Debug("Decrypted document")
	return &Result{OutputPath: output, Success: true}, nil
}

// Permissions lists the actions to forbid when protecting a document.
type Permissions struct {
	NoPrint  bool
	NoCopy   bool
	NoModify bool
}

// Protect encrypts the document with an owner password and restricts the
// given actions. The user password may be empty, leaving the document
// openable but restricted.
func Protect(input, output, ownerPassword, userPassword string, perms Permissions, logger *logrus.Logger) (*Result, error) {
	if err := validatePassword(ownerPassword); err != nil {
		return nil, err
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}

	flags := model.PermissionsNone
	var restrictions []string
	if perms.NoPrint {
		restrictions = append(restrictions, "print")
	} else {
		flags |= model.PermissionPrintRev2 | model.PermissionPrintRev3
	}
	if perms.NoCopy {
		restrictions = append(restrictions, "copy")
	} else {
		flags |= model.PermissionExtract | model.PermissionExtractRev3
	}
	if perms.NoModify {
		restrictions = append(restrictions, "modify")
	} else {
		flags |= model.PermissionModify | model.PermissionModAnnFillForm | model.PermissionAssembleRev3
	}

	conf := relaxedConf()
	conf.OwnerPW = ownerPassword
	conf.UserPW = userPassword
	conf.Permissions = flags
	if err := api.EncryptFile(input, output, conf); err != nil {
		return nil, fmt.Errorf("protecting %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "restrictions": restrictions}).Debug("Protected document")
	return &Result{OutputPath: output, Restrictions: restrictions, Success: true}, nil
}

// CleanMetadata removes the document info dictionary and the XMP metadata
// stream.
func CleanMetadata(input, output string, logger *logrus.Logger) (*Result, error) {
	ctx, err := api.ReadContextFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}

	ctx.XRefTable.Info = nil
	if rootDict, err := ctx.Catalog(); err == nil {
		delete(rootDict, "Metadata")
	}

	if err := ensureDir(output); err != nil {
		return nil, err
	}
	if err := api.WriteContextFile(ctx, output); err != nil {
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output}).Debug("Cleaned metadata")
	return &Result{OutputPath: output, Success: true}, nil
}

func relaxedConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
