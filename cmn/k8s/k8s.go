// Package k8s provides best-effort Kubernetes deployment-context detection:
// Init logs the pod's node name once and stores it in NodeName; nothing
// else in the dumper reads it, so the dumper's behavior is identical
// whether or not it is running inside a cluster.
package k8s

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/velichkov/createrepo-c/cmn/nlog"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const (
	podNameEnv   = "HOSTNAME"
	namespaceEnv = "POD_NAMESPACE"
)

const nonK8s = "non-Kubernetes deployment"

var (
	NodeName string // assigned upon successful Init

	ErrK8sRequired = errors.New("the operation requires Kubernetes")
)

// Init attempts in-cluster discovery of this process's node name. Any
// failure is logged and otherwise ignored: a missing in-cluster config,
// client setup error, or missing pod name at info level, a failed pod
// lookup (no RBAC, API unreachable) at error level.
func Init() {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		nlog.Infoln(nonK8s, "(in-cluster config:", short(err), ")")
		return
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		nlog.Infoln(nonK8s, "(client-go init:", short(err), ")")
		return
	}

	podName := os.Getenv(podNameEnv)
	if podName == "" {
		nlog.Infoln("no pod name in environment =>", nonK8s)
		return
	}
	ns := os.Getenv(namespaceEnv)
	if ns == "" {
		ns = "default"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pod, err := client.CoreV1().Pods(ns).Get(ctx, podName, metav1.GetOptions{})
	if err != nil {
		nlog.Errorf("failed to get pod %q: %v", podName, err)
		return
	}
	NodeName = pod.Spec.NodeName
	if NodeName != "" {
		nlog.Infoln("pod", podName, "scheduled on node", NodeName)
	}
}

func IsK8s() bool { return NodeName != "" }

func short(err error) string {
	const sizeLimit = 48
	msg := err.Error()
	if idx := strings.IndexByte(msg, ','); idx > 0 && idx < len(msg) {
		msg = msg[:idx]
	}
	if len(msg) > sizeLimit {
		msg = msg[:sizeLimit] + " ..."
	}
	return msg
}
