// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package legacy

import (
	"errors"
	"fmt"
)

// ProgramError is an error with a stable numeric code that is reported back
// to the submitter of an instruction
type ProgramError struct {
	Name    string
	Message string
	Code    uint32
}

func (e *ProgramError) Error() string {
	return e.Message
}

// Errors raised by the program's own validation
var (
	ErrUnauthorized = &ProgramError{
		Code:    6000,
		Name:    "Unauthorized",
		Message: "Unauthorized: Only the authority can perform this action",
	}
	ErrTitleTooLong = &ProgramError{
		Code:    6001,
		Name:    "TitleTooLong",
		Message: "Title exceeds maximum length of 64 characters",
	}
	ErrArtistNameTooLong = &ProgramError{
		Code:    6002,
		Name:    "ArtistNameTooLong",
		Message: "Artist name exceeds maximum length of 64 characters",
	}
	ErrCityNameTooLong = &ProgramError{
		Code:    6003,
		Name:    "CityNameTooLong",
		Message: "City name exceeds maximum length of 128 characters",
	}
	ErrHashTooLong = &ProgramError{
		Code:    6004,
		Name:    "HashTooLong",
		Message: "Story hash exceeds maximum length of 128 characters",
	}
	ErrDedicationTooLong = &ProgramError{
		Code:    6005,
		Name:    "DedicationTooLong",
		Message: "Dedication text exceeds maximum length of 256 characters",
	}
	ErrStatusTooLong = &ProgramError{
		Code:    6006,
		Name:    "StatusTooLong",
		Message: "Physical status exceeds maximum length of 128 characters",
	}
	ErrInvalidAge = &ProgramError{
		Code:    6007,
		Name:    "InvalidAge",
		Message: "Invalid age: must be between 1 and 120",
	}
	ErrInvalidAuthority = &ProgramError{
		Code:    6008,
		Name:    "InvalidAuthority",
		Message: "Invalid authority: cannot be the zero address",
	}
	ErrInstructionReplayed = &ProgramError{
		Code:    6009,
		Name:    "InstructionReplayed",
		Message: "This signed instruction has already been processed",
	}
)

// Errors raised by the runtime around the program: addressing, account
// state and instruction handling
var (
	ErrUnknownInstruction = &ProgramError{
		Code:    101,
		Name:    "InstructionFallbackNotFound",
		Message: "Instruction not recognized",
	}
	ErrInstructionDidNotDeserialize = &ProgramError{
		Code:    102,
		Name:    "InstructionDidNotDeserialize",
		Message: "The program could not deserialize the given instruction",
	}
	ErrSeedsConstraint = &ProgramError{
		Code:    2006,
		Name:    "ConstraintSeeds",
		Message: "A seeds constraint was violated",
	}
	ErrRecordExists = &ProgramError{
		Code:    3000,
		Name:    "AccountDiscriminatorAlreadySet",
		Message: "A legacy record already exists at the derived address",
	}
	ErrAccountDiscriminatorMismatch = &ProgramError{
		Code:    3002,
		Name:    "AccountDiscriminatorMismatch",
		Message: "Account discriminator did not match what was expected",
	}
	ErrInvalidSignature = &ProgramError{
		Code:    3010,
		Name:    "AccountNotSigner",
		Message: "The instruction signature did not verify",
	}
	ErrRecordNotFound = &ProgramError{
		Code:    3012,
		Name:    "AccountNotInitialized",
		Message: "No legacy record exists at the given address",
	}
)

// ErrorCode returns the program error code carried by err, or 0 if err does
// not wrap a ProgramError
func ErrorCode(err error) uint32 {
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return progErr.Code
	}
	return 0
}

// ErrorName returns the program error name carried by err, or an empty
// string
func ErrorName(err error) string {
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return progErr.Name
	}
	return ""
}

func fieldTooLong(err *ProgramError, field string, length int) error {
	return fmt.Errorf("%s is %d bytes: %w", field, length, err)
}
