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

type registeredConverter struct {
	converter DocumentConverter
	name      string
}

// Registry is the ordered list of converters an Engine tries. The most recently
// inserted converter is tried first.
//
// Iteration is safe from several goroutines; inserting while a conversion is in
// flight is not.
type Registry struct {
	converters []registeredConverter
}

// InsertFirst puts c at the front of the trial order.
func (r *Registry) InsertFirst(name string, c DocumentConverter) {
	r.converters = append(r.converters, registeredConverter{})
	copy(r.converters[1:], r.converters)
	r.converters[0] = registeredConverter{converter: c, name: name}
}

// Len returns the number of registered converters.
func (r *Registry) Len() int {
	return len(r.converters)
}

// Names returns the converter names in trial order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.converters))
	for i, rc := range r.converters {
		names[i] = rc.name
	}
	return names
}
