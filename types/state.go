/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// EntityState is the persisted progress of a single entity
type EntityState struct {
	Entity        string `json:"entity"`
	LastIndexTime string `json:"last_index_time"`
}

// State holds the last index time of every entity imported so far.
// It is shared by concurrently running entities.
type State struct {
	*sync.RWMutex `json:"-"`

	Entities []*EntityState `json:"entities"`
}

func NewState() *State {
	return &State{RWMutex: &sync.RWMutex{}, Entities: []*EntityState{}}
}

func (s *State) GetLastIndexTime(entity string) string {
	s.RLock()
	defer s.RUnlock()

	for _, es := range s.Entities {
		if es.Entity == entity {
			return es.LastIndexTime
		}
	}
	return ""
}

func (s *State) SetLastIndexTime(entity, value string) {
	s.Lock()
	defer s.Unlock()

	for _, es := range s.Entities {
		if es.Entity == entity {
			es.LastIndexTime = value
			return
		}
	}
	s.Entities = append(s.Entities, &EntityState{Entity: entity, LastIndexTime: value})
}

// LoadState reads the state file at path; a missing file yields an empty state
func LoadState(path string) (*State, error) {
	state := NewState()
	if path == "" {
		return state, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read state file[%s]: %s", path, err)
	}

	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state file[%s]: %s", path, err)
	}
	return state, nil
}

// Save writes the state atomically through a temp file in the same folder
func (s *State) Save(path string) error {
	if path == "" {
		return nil
	}

	s.RLock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %s", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %s", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %s", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
