// SPDX-License-Identifier: MPL-2.0

package process

import (
	"os"
	"slices"
	"strings"
)

// EnvToSlice converts a map of environment variables to a sorted "KEY=VALUE" slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// SplitEnv splits a "KEY=VALUE" entry. Entries without a separator report ok=false.
func SplitEnv(entry string) (key, value string, ok bool) {
	return strings.Cut(entry, "=")
}

// buildEnviron layers the explicit environment of a command on top of the
// inherited one. Later layers win:
//
//  1. inherited environment (os.Environ unless overridden)
//  2. removal of every name listed in unset
//  3. explicit overrides
func buildEnviron(environ func() []string, unset []string, overrides map[string]string) []string {
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)
	for _, entry := range environ() {
		k, v, ok := SplitEnv(entry)
		if !ok {
			continue
		}
		env[k] = v
	}
	for _, name := range unset {
		delete(env, name)
	}
	for k, v := range overrides {
		env[k] = v
	}
	return EnvToSlice(env)
}
