// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classify

import (
	"os"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Remediation message keys. One per category; the dependency-install
// category splits on the network flag.
const (
	msgUnclassified       = "launcher.remediation.unclassified"
	msgToolMissing        = "launcher.remediation.tool_missing"
	msgVersionUnsupported = "launcher.remediation.version_unsupported"
	msgInstallNetwork     = "launcher.remediation.install_network"
	msgInstallOther       = "launcher.remediation.install_other"
	msgKeyGeneration      = "launcher.remediation.key_generation"
	msgKeyParse           = "launcher.remediation.key_parse"
	msgGuiMissing         = "launcher.remediation.gui_missing"
	msgBackendUnavailable = "launcher.remediation.backend_unavailable"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.Korean,
}

var matcher = language.NewMatcher(supported)

func init() {
	for _, e := range []struct {
		key, en, ko string
	}{
		{msgUnclassified,
			"The launcher hit an unrecognized error. The full tool output is shown below; please check the log file for details.",
			"런처가 알 수 없는 오류를 만났습니다. 전체 도구 출력은 아래에 표시됩니다. 자세한 내용은 로그 파일을 확인하세요."},
		{msgToolMissing,
			"Python was not found. Install Python 3.11 or newer and make sure it is on your PATH.",
			"Python을 찾을 수 없습니다. Python 3.11 이상을 설치하고 PATH에 등록되어 있는지 확인하세요."},
		{msgVersionUnsupported,
			"The installed Python is too old. MANIM needs Python 3.11 or newer.",
			"설치된 Python 버전이 너무 낮습니다. MANIM은 Python 3.11 이상이 필요합니다."},
		{msgInstallNetwork,
			"Package download failed, which usually means no network connection or a blocked proxy. Check connectivity and rerun setup.",
			"패키지 다운로드에 실패했습니다. 네트워크 연결이 없거나 프록시가 차단된 경우가 대부분입니다. 연결을 확인한 뒤 setup을 다시 실행하세요."},
		{msgInstallOther,
			"Package installation failed. Review the captured pip output below and rerun setup once the cause is fixed.",
			"패키지 설치에 실패했습니다. 아래의 pip 출력을 확인하고 원인을 해결한 뒤 setup을 다시 실행하세요."},
		{msgKeyGeneration,
			"Generating the encryption keys failed. Check that the data directory is writable and rerun.",
			"암호화 키 생성에 실패했습니다. 데이터 디렉터리에 쓰기 권한이 있는지 확인한 뒤 다시 실행하세요."},
		{msgKeyParse,
			"The stored encryption keys are missing or incomplete. Restore the key file from backup or set MANIM_DB_KEY and MANIM_ENCRYPTION_KEY.",
			"저장된 암호화 키가 없거나 불완전합니다. 키 파일을 백업에서 복원하거나 MANIM_DB_KEY와 MANIM_ENCRYPTION_KEY를 설정하세요."},
		{msgGuiMissing,
			"The GUI toolkit (PySide6) is not installed in the runtime environment. Run 'manim setup' to install it.",
			"GUI 툴킷(PySide6)이 실행 환경에 설치되어 있지 않습니다. 'manim setup'을 실행하여 설치하세요."},
		{msgBackendUnavailable,
			"The encrypted database engine (SQLCipher) is unavailable and plain-database fallback is disabled. Install pysqlcipher3 or enable allow_sqlite_fallback in security.yaml.",
			"암호화 데이터베이스 엔진(SQLCipher)을 사용할 수 없고 일반 데이터베이스 대체가 비활성화되어 있습니다. pysqlcipher3를 설치하거나 security.yaml에서 allow_sqlite_fallback을 활성화하세요."},
	} {
		message.SetString(language.English, e.key, e.en)
		message.SetString(language.Korean, e.key, e.ko)
	}
}

var (
	printerOnce sync.Once
	printer     *message.Printer
)

// localePrinter resolves the user's locale once per process from LC_ALL and
// LANG, falling back to English for anything outside the catalog.
func localePrinter() *message.Printer {
	printerOnce.Do(func() {
		raw := os.Getenv("LC_ALL")
		if raw == "" {
			raw = os.Getenv("LANG")
		}
		tag, err := language.Parse(trimLocale(raw))
		if err != nil {
			tag = language.English
		}
		matched, _, _ := matcher.Match(tag)
		printer = message.NewPrinter(matched)
	})
	return printer
}

// trimLocale strips the ".UTF-8" style suffix from POSIX locale strings.
func trimLocale(raw string) string {
	for i, r := range raw {
		if r == '.' || r == '@' {
			return raw[:i]
		}
	}
	return raw
}

// Remediation renders the localized remediation string for a category.
// The network flag only affects CategoryDependencyInstallFailed.
func Remediation(c Category, network bool) string {
	p := localePrinter()
	switch c {
	case CategoryToolMissing:
		return p.Sprintf(msgToolMissing)
	case CategoryVersionUnsupported:
		return p.Sprintf(msgVersionUnsupported)
	case CategoryDependencyInstallFailed:
		if network {
			return p.Sprintf(msgInstallNetwork)
		}
		return p.Sprintf(msgInstallOther)
	case CategoryKeyGenerationFailed:
		return p.Sprintf(msgKeyGeneration)
	case CategoryKeyParseFailed:
		return p.Sprintf(msgKeyParse)
	case CategoryGuiDependencyMissing:
		return p.Sprintf(msgGuiMissing)
	case CategoryEncryptionBackendUnavailable:
		return p.Sprintf(msgBackendUnavailable)
	default:
		return p.Sprintf(msgUnclassified)
	}
}
