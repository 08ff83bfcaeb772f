// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package tomd

// attemptOutcome is the result of offering one input to one converter under
// one candidate extension.
type attemptOutcome int

const (
	outcomeDeclined attemptOutcome = iota
	outcomeConverted
	outcomeFailed
)

func (o attemptOutcome) String() string {
	switch o {
	case outcomeConverted:
		return "converted"
	case outcomeFailed:
		return "failed"
	default:
		return "declined"
	}
}

// attempt folds Accepts and Convert into a single three-way outcome.
func attempt(c DocumentConverter, localPath string, hints ConvertHints) (attemptOutcome, *ConversionResult, error) {
	if !c.Accepts(localPath, hints) {
		return outcomeDeclined, nil, nil
	}
	result, err := c.Convert(localPath, hints)
	if err != nil {
		return outcomeFailed, nil, err
	}
	if result == nil {
		return outcomeDeclined, nil, nil
	}
	return outcomeConverted, result, nil
}

// dispatch is the internal dispatch method. Candidate extensions form the outer
// loop and registry order the inner loop; the first converted result wins.
func (e *Engine) dispatch(localPath string, candidates extensionCandidates, hints ConvertHints) (*ConversionResult, error) {
	trials := candidates.trials()
	var failedAttempts []FailedConversionAttempt

	for _, ext := range trials {
		for _, rc := range e.registry.converters {
			outcome, result, err := attempt(rc.converter, localPath, hints.withExtension(ext))
			e.logger.Debug("conversion attempt",
				"converter", rc.name,
				"extension", extensionLabel(ext),
				"outcome", outcome.String())

			switch outcome {
			case outcomeConverted:
				result.Markdown = normalizeOutput(result.Markdown)
				result.Extension = ext
				return result, nil
			case outcomeFailed:
				e.logger.Debug("converter failed", "converter", rc.name, "error", err)
				failedAttempts = append(failedAttempts, FailedConversionAttempt{
					Converter: rc.name,
					Extension: ext,
					Err:       err,
				})
			}
		}
	}

	if len(failedAttempts) > 0 {
		return nil, &ConversionError{Attempts: failedAttempts, Extensions: trials}
	}
	return nil, &UnsupportedFormatError{Extensions: trials}
}
