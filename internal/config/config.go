package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/turbolytics/nasr-loader/internal/csvfile"
)

// DefaultPort is the port used when nasr_db does not set one.
const DefaultPort = 5432

type DBConnection struct {
	Host     string `yaml:"host" validate:"required"`
	Database string `yaml:"database" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	// Schema qualifies table names that have none. Empty means search_path.
	Schema string `yaml:"schema"`
}

// ConnectionString returns a postgres:// URL for the connection.
func (c DBConnection) ConnectionString() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + c.Database,
	}
	return u.String()
}

// CSVSettings is the dialect shared by every NASR data file.
type CSVSettings struct {
	Encoding  string `yaml:"encoding" validate:"required,encoding"`
	Delimiter string `yaml:"delimiter" validate:"required,len=1,csvrune"`
	QuoteChar string `yaml:"quote_char" validate:"required,len=1,csvrune,nefield=Delimiter"`
}

func (c CSVSettings) Dialect() csvfile.Dialect {
	delimiter, _ := csvfile.FirstRune(c.Delimiter)
	quote, _ := csvfile.FirstRune(c.QuoteChar)
	return csvfile.Dialect{
		Encoding:  c.Encoding,
		Delimiter: delimiter,
		Quote:     quote,
	}
}

// DictTableSettings is a small static table whose rows live in the config.
type DictTableSettings struct {
	Name string `yaml:"name" validate:"required"`
	Data []Row  `yaml:"data" validate:"required"`
}

// DataFileSettings maps a NASR CSV file to its table.
type DataFileSettings struct {
	FileName  string   `yaml:"file_name" validate:"required"`
	TableName string   `yaml:"table_name" validate:"required"`
	IsSpatial bool     `yaml:"is_spatial"`
	Columns   []string `yaml:"columns" validate:"required,min=1,dive,required"`
}

// S3 configures access to a data_dir of the form s3://bucket/prefix.
type S3 struct {
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Configuration struct {
	NasrDB      DBConnection        `yaml:"nasr_db"`
	CSVSettings CSVSettings         `yaml:"csv_settings"`
	DataDir     string              `yaml:"data_dir" validate:"required"`
	DictTables  []DictTableSettings `yaml:"dict_tables" validate:"required,dive"`
	DataTables  []DataFileSettings  `yaml:"data_tables" validate:"required,dive"`

	// LoadOrder overrides the order data files are loaded in.
	LoadOrder []string `yaml:"load_order" validate:"omitempty,dive,required"`
	// SpatialChunkSize is the number of rows per COPY for spatial tables.
	// Zero keeps the loader default.
	SpatialChunkSize int `yaml:"spatial_chunk_size" validate:"gte=0"`
	S3        S3       `yaml:"s3"`
}

// DataTable returns the settings for fileName.
func (c *Configuration) DataTable(fileName string) (DataFileSettings, bool) {
	for _, t := range c.DataTables {
		if t.FileName == fileName {
			return t, true
		}
	}
	return DataFileSettings{}, false
}

// IsS3 reports whether data files are read from object storage.
func (c *Configuration) IsS3() bool {
	return strings.HasPrefix(c.DataDir, "s3://")
}

type Option func(*Configuration)

// WithDBPassword replaces nasr_db.password when password is not empty.
func WithDBPassword(password string) Option {
	return func(c *Configuration) {
		if password != "" {
			c.NasrDB.Password = password
		}
	}
}

func NewConfigurationFromFile(fpath string, opts ...Option) (*Configuration, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, &Error{Path: fpath, Err: err}
	}
	return NewConfiguration(bs, opts...)
}

// NewConfiguration decodes and validates a YAML document.
// Unknown keys are ignored.
func NewConfiguration(bs []byte, opts ...Option) (*Configuration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(bs))

	var c Configuration
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("empty document")
		}
		return nil, &Error{Err: err}
	}

	for _, opt := range opts {
		opt(&c)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
