/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ImportLegacy merges a configuration in the older line format
//
//	[Global Knob Image]=/path/knob.png
//	[Keep Aspect Ratio]=1.000000
//
// into cfg. Flags are numbers; anything other than zero turns them on.
// Unknown keys are ignored. It returns the number of keys applied.
func ImportLegacy(r io.Reader, cfg *AppConfig) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		key, val, ok := strings.Cut(text, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		flag := func(dst *bool) error {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("line %d %s: %w", line, key, err)
			}
			*dst = f != 0
			return nil
		}
		var err error
		switch key {
		case "[Global Knob Image]":
			cfg.Images.Knob = val
		case "[Global Button Image]":
			cfg.Images.Button = val
		case "[Global Switch Image]":
			cfg.Images.Switch = val
		case "[Use Global Knob Image]":
			err = flag(&cfg.Images.UseKnob)
		case "[Use Global Button Image]":
			err = flag(&cfg.Images.UseButton)
		case "[Use Global Switch Image]":
			err = flag(&cfg.Images.UseSwitch)
		case "[Keep Aspect Ratio]":
			err = flag(&cfg.Canvas.KeepAspectRatio)
		case "[Use Global Size]":
			err = flag(&cfg.Canvas.ResizeAll)
		default:
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read legacy config: %w", err)
	}
	return n, nil
}
