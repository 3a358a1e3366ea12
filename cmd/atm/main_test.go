package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "atm.yml")
	content := "machine:\n  name: test\n  cash_inside: 10\nlogger:\n  level: error\n  output: " +
		filepath.Join(dir, "atm.log") + "\nshutdown_timeout: 2s\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestAtmMain_Withdraw(t *testing.T) {
	path := writeConfig(t)
	in := strings.NewReader("swipe\n1234 enter\n4 2 enter\n")
	var out bytes.Buffer

	err := atmMain([]string{"--config", path, "--cash", "100", "--pin", "1234"}, in, &out)
	if err != nil {
		t.Fatalf("atmMain 失败: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 9 {
		t.Fatalf("期望 9 次转换, got %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[5], "pin_accepted") {
		t.Errorf("第 6 次转换应为 pin_accepted: %s", lines[5])
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "dispensed") || !strings.Contains(last, "{cash: 58, auth: Waiting, register: []}") {
		t.Errorf("最后一次转换错误: %s", last)
	}
}

func TestAtmMain_WrongPin(t *testing.T) {
	path := writeConfig(t)
	in := strings.NewReader("swipe 1234\n4321 enter\n1 enter\n")
	var out bytes.Buffer

	if err := atmMain([]string{"-c", path}, in, &out); err != nil {
		t.Fatalf("atmMain 失败: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "pin_rejected") {
		t.Errorf("期望 pin_rejected:\n%s", got)
	}
	if strings.Contains(got, "dispensed") {
		t.Errorf("错误 PIN 不应出钞:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "{cash: 10, auth: Waiting, register: []}") {
		t.Errorf("现金不应变化:\n%s", got)
	}
}

func TestAtmMain_InvalidInputSkipped(t *testing.T) {
	path := writeConfig(t)
	in := strings.NewReader("swipe\nwithdraw 9\n")
	var out bytes.Buffer

	// 没有默认卡片时 swipe 无效，整行被跳过
	if err := atmMain([]string{"--config", path}, in, &out); err != nil {
		t.Fatalf("atmMain 失败: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("无效输入不应产生转换:\n%s", out.String())
	}
}

func TestAtmMain_Options(t *testing.T) {
	var out bytes.Buffer
	if err := atmMain([]string{"--version"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("--version 失败: %v", err)
	}
	if !strings.HasPrefix(out.String(), "atm ") {
		t.Errorf("版本输出错误: %q", out.String())
	}

	path := writeConfig(t)
	if err := atmMain([]string{"--config", path, "--pin", "12a"}, strings.NewReader(""), &out); err == nil {
		t.Error("非法 PIN 应返回错误")
	}
	if err := atmMain([]string{"--config", path, "--log-level", "loud"}, strings.NewReader(""), &out); err == nil {
		t.Error("非法日志级别应返回错误")
	}
	if err := atmMain([]string{"--no-such-flag"}, strings.NewReader(""), &out); err == nil {
		t.Error("未知参数应返回错误")
	}
}
