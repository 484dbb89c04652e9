/*
Copyright © 2020 Marvin

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package config

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
)

// 程序配置文件
type Config struct {
	TaskMode        string          `toml:"-" json:"task-mode"`
	AppConfig       AppConfig       `toml:"app" json:"app"`
	OracleConfig    OracleConfig    `toml:"oracle" json:"oracle"`
	OceanBaseConfig OceanBaseConfig `toml:"oceanbase" json:"oceanbase"`
	MetadataConfig  MetadataConfig  `toml:"metadata" json:"metadata"`
	RemapConfig     RemapConfig     `toml:"remap" json:"remap"`
	CompareConfig   CompareConfig   `toml:"compare" json:"compare"`
	FixupConfig     FixupConfig     `toml:"fixup" json:"fixup"`
	LogConfig       LogConfig       `toml:"log" json:"log"`
}

type AppConfig struct {
	SlowlogThreshold int    `toml:"slowlog-threshold" json:"slowlog-threshold"`
	PprofPort        string `toml:"pprof-port" json:"pprof-port"`
}

type OracleConfig struct {
	Username      string   `toml:"username" json:"username"`
	Password      string   `toml:"password" json:"password"`
	Host          string   `toml:"host" json:"host"`
	Port          int      `toml:"port" json:"port"`
	ServiceName   string   `toml:"service-name" json:"service-name"`
	LibDir        string   `toml:"lib-dir" json:"lib-dir"`
	ConnectParams string   `toml:"connect-params" json:"connect-params"`
	SessionParams []string `toml:"session-params" json:"session-params"`
	SchemaNames   []string `toml:"schema-name" json:"schema-name"`
	Timezone      string   `toml:"timezone" json:"timezone"`
}

type OceanBaseConfig struct {
	Username      string `toml:"username" json:"username"`
	Password      string `toml:"password" json:"password"`
	Host          string `toml:"host" json:"host"`
	Port          int    `toml:"port" json:"port"`
	ConnectParams string `toml:"connect-params" json:"connect-params"`
	MetaSchema    string `toml:"meta-schema" json:"meta-schema"`
}

// 元数据快照来源
// dump-dir 非空时走离线批量导出文件（dbcat/obclient 导出 JSON），否则在线采集
type MetadataConfig struct {
	DumpDir       string `toml:"dump-dir" json:"dump-dir"`
	GatherThreads int    `toml:"gather-threads" json:"gather-threads"`
}

type RemapConfig struct {
	RuleFile        string   `toml:"rule-file" json:"rule-file"`
	EnableInference bool     `toml:"enable-inference" json:"enable-inference"`
	ObjectTypes     []string `toml:"object-types" json:"object-types"`
	OutputDir       string   `toml:"output-dir" json:"output-dir"`
}

type CompareConfig struct {
	OutputDir      string `toml:"output-dir" json:"output-dir"`
	IgnoreMviewLog bool   `toml:"ignore-mview-log" json:"ignore-mview-log"`
}

type FixupConfig struct {
	OutputDir     string `toml:"output-dir" json:"output-dir"`
	FixupThreads  int    `toml:"fixup-threads" json:"fixup-threads"`
	DDLTimeout    int    `toml:"ddl-timeout" json:"ddl-timeout"`
	ScriptCharset string `toml:"script-charset" json:"script-charset"`
}

type LogConfig struct {
	LogLevel   string `toml:"log-level" json:"log-level"`
	LogFile    string `toml:"log-file" json:"log-file"`
	MaxSize    int    `toml:"max-size" json:"max-size"`
	MaxDays    int    `toml:"max-days" json:"max-days"`
	MaxBackups int    `toml:"max-backups" json:"max-backups"`
}

// 读取配置文件
func ReadConfigFile(file string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.configFromFile(file); err != nil {
		return cfg, err
	}
	if cfg.MetadataConfig.GatherThreads == 0 {
		cfg.MetadataConfig.GatherThreads = 4
	}
	if cfg.FixupConfig.FixupThreads == 0 {
		cfg.FixupConfig.FixupThreads = 8
	}
	return cfg, nil
}

// 加载配置文件并解析
func (c *Config) configFromFile(file string) error {
	if _, err := toml.DecodeFile(file, c); err != nil {
		return fmt.Errorf("failed decode toml config file %s: %v", file, err)
	}
	return nil
}

func (c *Config) String() string {
	cfg, err := json.Marshal(c)
	if err != nil {
		return "<nil>"
	}
	return string(cfg)
}
