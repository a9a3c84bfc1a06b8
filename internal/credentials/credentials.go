package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingCredentials는 필수 인증 정보가 비어 있을 때 반환됩니다
var ErrMissingCredentials = errors.New("인증 정보가 없습니다")

// Credentials는 거래소 REST API 접근 정보입니다
type Credentials struct {
	APIURL    string
	APIKey    string
	APISecret string // base64 인코딩된 private key
}

// String은 키와 시크릿을 가린 문자열을 반환합니다
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIURL: %s, APIKey: %s, APISecret: ***}", c.APIURL, mask(c.APIKey))
}

// Validate는 모든 필드가 채워져 있는지 확인합니다
func (c Credentials) Validate() error {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, "api url")
	}
	if c.APIKey == "" {
		missing = append(missing, "api key")
	}
	if c.APISecret == "" {
		missing = append(missing, "api secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Provider는 인증 정보 공급자 인터페이스입니다
type Provider interface {
	Credentials() (Credentials, error)
}

// Static은 이미 로드된 값(환경변수 등)을 그대로 제공합니다
type Static Credentials

// Credentials는 Provider 인터페이스를 구현합니다
func (s Static) Credentials() (Credentials, error) {
	c := Credentials(s)
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// 키 디렉터리 안의 파일 이름
const (
	URLFile    = "api_url.txt"
	KeyFile    = "api_key.txt"
	SecretFile = "api_sec.txt"
)

// FileProvider는 디렉터리 안의 텍스트 파일에서 인증 정보를 읽습니다.
// 각 파일의 첫 줄만 사용합니다.
type FileProvider struct {
	Dir string
}

// Credentials는 Provider 인터페이스를 구현합니다
func (p FileProvider) Credentials() (Credentials, error) {
	apiURL, err := readFirstLine(filepath.Join(p.Dir, URLFile))
	if err != nil {
		return Credentials{}, err
	}
	apiKey, err := readFirstLine(filepath.Join(p.Dir, KeyFile))
	if err != nil {
		return Credentials{}, err
	}
	apiSecret, err := readFirstLine(filepath.Join(p.Dir, SecretFile))
	if err != nil {
		return Credentials{}, err
	}

	c := Credentials{APIURL: apiURL, APIKey: apiKey, APISecret: apiSecret}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Chain은 첫 번째로 성공한 공급자의 값을 사용합니다
type Chain []Provider

// Credentials는 Provider 인터페이스를 구현합니다
func (c Chain) Credentials() (Credentials, error) {
	var errs []error
	for _, p := range c {
		creds, err := p.Credentials()
		if err == nil {
			return creds, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Credentials{}, ErrMissingCredentials
	}
	return Credentials{}, errors.Join(errs...)
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("인증 파일 열기 실패: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("인증 파일 읽기 실패(%s): %w", path, err)
	}
	return "", nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}
