package config

type Credentials struct {
	User     string `hcl:"user"`
	Password string `hcl:"password"`
}

type Host struct {
	Hostname string `hcl:"hostname"`
	Port     string `hcl:"port"`
}

type MySQL struct {
	Credentials `hcl:",squash"`
	Host        `hcl:",squash"`
	Database    string `hcl:"database"`
}

type SQLite struct {
	Path string `hcl:"path"`
}

type Amqp struct {
	Credentials `hcl:",squash"`
	Host        `hcl:",squash"`
	VirtualHost string `hcl:"virtualHost"`
}

type MongoDB struct {
	Credentials `hcl:",squash"`
	Host        `hcl:",squash"`
	Database    string `hcl:"database"`
	URL         string `hcl:"url"`
}

type Redis struct {
	Host     `hcl:",squash"`
	Password string `hcl:"password"`
}

type SMTP struct {
	Host     `hcl:",squash"`
	HeloName string `hcl:"heloName"`
}

type HTTP struct {
	Host         `hcl:",squash"`
	Method       string            `hcl:"method"`
	Scheme       string            `hcl:"scheme"`
	Path         string            `hcl:"path"`
	Payload      string            `hcl:"payload"`
	Headers      map[string]string `hcl:"headers"`
	Timeout      string            `hcl:"timeout"`
	ExpectStatus string            `hcl:"expectStatus"`
}

type S3 struct {
	Bucket          string `hcl:"bucket"`
	Region          string `hcl:"region"`
	Endpoint        string `hcl:"endpoint"`
	AccessKeyID     string `hcl:"accessKeyId"`
	SecretAccessKey string `hcl:"secretAccessKey"`
}

type Disk struct {
	Path    string `hcl:"path"`
	MinFree string `hcl:"minFree"`
}

type Command struct {
	Command          string   `hcl:"command"`
	Args             []string `hcl:"args"`
	Env              []string `hcl:"env"`
	WorkingDirectory string   `hcl:"workingDirectory"`
}

type Probe struct {
	Name       string `hcl:",key"`
	Enabled    *bool  `hcl:"enabled"` // bool-pointer to make "true" the default
	Wait       bool   `hcl:"wait"`
	Filesystem string `hcl:"filesystem"`

	MySQL   *MySQL   `hcl:"mysql"`
	SQLite  *SQLite  `hcl:"sqlite"`
	Redis   *Redis   `hcl:"redis"`
	MongoDB *MongoDB `hcl:"mongodb"`
	Amqp    *Amqp    `hcl:"amqp"`
	HTTP    *HTTP    `hcl:"http"`
	SMTP    *SMTP    `hcl:"smtp"`
	S3      *S3      `hcl:"s3"`
	Disk    *Disk    `hcl:"disk"`
	Command *Command `hcl:"command"`
}

func (p *Probe) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

type BootJob struct {
	Name             string   `hcl:",key"`
	Command          string   `hcl:"command"`
	Args             []string `hcl:"args"`
	Env              []string `hcl:"env"`
	WorkingDirectory string   `hcl:"workingDirectory"`
	CanFail          bool     `hcl:"canFail"`
	Timeout          string   `hcl:"timeout"`
}

type Config struct {
	Probes   []Probe   `hcl:"probe"`
	BootJobs []BootJob `hcl:"boot"`
}

// DisabledProbes returns the names of all probes switched off with
// `enabled = false`.
func (c *Config) DisabledProbes() []string {
	var names []string
	for i := range c.Probes {
		if !c.Probes[i].IsEnabled() {
			names = append(names, c.Probes[i].Name)
		}
	}
	return names
}
