package service

import (
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const defaultIssuer = "Eclipse Software Help Desk"

type TOTP struct {
	Issuer    string
	Period    uint
	Skew      uint
	Digits    otp.Digits
	Algorithm otp.Algorithm
}

func NewTOTP(issuer string) *TOTP {
	return &TOTP{
		Issuer:    issuer,
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func (p *TOTP) GenerateSecret(accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer(),
		AccountName: accountName,
		Period:      p.period(),
		Digits:      p.digits(),
		Algorithm:   p.algorithm(),
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func (p *TOTP) ProvisioningURI(accountName string, secret string) (string, error) {
	issuer := p.issuer()
	label := url.PathEscape(issuer + ":" + accountName)
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", "6")
	query.Set("period", "30")
	return "otpauth://totp/" + label + "?" + query.Encode(), nil
}

func (p *TOTP) ValidateCode(secret string, code string) bool {
	valid, err := totp.ValidateCustom(strings.TrimSpace(code), secret, time.Now(), totp.ValidateOpts{
		Period:    p.period(),
		Skew:      p.skew(),
		Digits:    p.digits(),
		Algorithm: p.algorithm(),
	})
	return err == nil && valid
}

func (p *TOTP) issuer() string {
	if strings.TrimSpace(p.Issuer) == "" {
		return defaultIssuer
	}
	return p.Issuer
}

func (p *TOTP) period() uint {
	if p.Period == 0 {
		return 30
	}
	return p.Period
}

func (p *TOTP) skew() uint {
	if p.Skew == 0 {
		return 1
	}
	return p.Skew
}

func (p *TOTP) digits() otp.Digits {
	if p.Digits == 0 {
		return otp.DigitsSix
	}
	return p.Digits
}

func (p *TOTP) algorithm() otp.Algorithm {
	return p.Algorithm
}
